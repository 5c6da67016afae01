package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"charity-backend/internal/domain"
)

type DonorRepo struct{ db *gorm.DB }

func NewDonorRepo(db *gorm.DB) *DonorRepo { return &DonorRepo{db: db} }

func (r *DonorRepo) Create(ctx context.Context, d *domain.Donor) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DonorRepo) FindByUserID(ctx context.Context, userID string) (*domain.Donor, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *DonorRepo) FindByID(ctx context.Context, id string) (*domain.Donor, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *DonorRepo) findOne(ctx context.Context, cond string, arg any) (*domain.Donor, error) {
	var d domain.Donor
	err := r.db.WithContext(ctx).Preload("User").Where(cond, arg).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonorRepo) List(ctx context.Context, offset, limit int) ([]domain.Donor, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Donor{}).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Donor
	err := q.Preload("User").Order("name ASC").Order("id ASC").
		Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

func (r *DonorRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Donor{}).Count(&n).Error
	return n, err
}
