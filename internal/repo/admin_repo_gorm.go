package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"charity-backend/internal/domain"
)

type AdminRepo struct{ db *gorm.DB }

func NewAdminRepo(db *gorm.DB) *AdminRepo { return &AdminRepo{db: db} }

func (r *AdminRepo) Create(ctx context.Context, a *domain.Admin) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// FindByUserID 不过滤 is_active，由调用方决定如何处理停用账号
func (r *AdminRepo) FindByUserID(ctx context.Context, userID string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) FindByID(ctx context.Context, id string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) List(ctx context.Context, offset, limit int) ([]domain.Admin, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Admin{}).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Admin
	err := q.Preload("User").Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// Update 只改传入的列（role / is_active）
func (r *AdminRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Admin{}).Where("id = ?", id).Updates(fields).Error
}

func (r *AdminRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Admin{})
	return res.RowsAffected > 0, res.Error
}
