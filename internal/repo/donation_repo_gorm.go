package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"charity-backend/internal/domain"
)

// DonationFilter 后台财务列表用
type DonationFilter struct {
	CampaignID string
	DonorID    string
	Search     string // 捐赠人姓名或活动标题
}

func (f DonationFilter) Scope(q *gorm.DB) *gorm.DB {
	if f.CampaignID != "" {
		q = q.Where("donations.campaign_id = ?", f.CampaignID)
	}
	if f.DonorID != "" {
		q = q.Where("donations.donor_id = ?", f.DonorID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"(donations.donor_id IN (?) OR donations.campaign_id IN (?))",
			q.Session(&gorm.Session{NewDB: true}).Model(&domain.Donor{}).Select("id").Where("LOWER(name) LIKE ?", like),
			q.Session(&gorm.Session{NewDB: true}).Model(&domain.Campaign{}).Select("id").Where("LOWER(title) LIKE ?", like),
		)
	}
	return q
}

type DonationRepo struct{ db *gorm.DB }

func NewDonationRepo(db *gorm.DB) *DonationRepo { return &DonationRepo{db: db} }

func (r *DonationRepo) Create(ctx context.Context, d *domain.Donation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DonationRepo) FindByID(ctx context.Context, id string) (*domain.Donation, error) {
	var d domain.Donation
	err := r.db.WithContext(ctx).Preload("Campaign").Preload("Donor").Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List 按捐款时间倒序
func (r *DonationRepo) List(ctx context.Context, f DonationFilter, offset, limit int) ([]domain.Donation, int64, error) {
	q := f.Scope(r.db.WithContext(ctx).Model(&domain.Donation{})).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Donation
	err := q.Preload("Campaign").Preload("Donor").
		Order("donations.donated_at DESC").Order("donations.id DESC").
		Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// Delete 返回是否真的删掉了一行；并发冲回时只有一方为 true
func (r *DonationRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Donation{})
	return res.RowsAffected == 1, res.Error
}

func (r *DonationRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Donation{}).Count(&n).Error
	return n, err
}
