package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"charity-backend/internal/domain"
)

type CommentFilter struct {
	CampaignID string
	DonorID    string
}

func (f CommentFilter) Scope(q *gorm.DB) *gorm.DB {
	if f.CampaignID != "" {
		q = q.Where("campaign_id = ?", f.CampaignID)
	}
	if f.DonorID != "" {
		q = q.Where("donor_id = ?", f.DonorID)
	}
	return q
}

type CommentRepo struct{ db *gorm.DB }

func NewCommentRepo(db *gorm.DB) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CommentRepo) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.WithContext(ctx).Preload("Donor").Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List 最新的在前
func (r *CommentRepo) List(ctx context.Context, f CommentFilter, offset, limit int) ([]domain.Comment, int64, error) {
	q := f.Scope(r.db.WithContext(ctx).Model(&domain.Comment{})).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Comment
	err := q.Preload("Donor").Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

func (r *CommentRepo) UpdateText(ctx context.Context, id, text string) error {
	return r.db.WithContext(ctx).Model(&domain.Comment{}).Where("id = ?", id).Update("text", text).Error
}

func (r *CommentRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{})
	return res.RowsAffected > 0, res.Error
}
