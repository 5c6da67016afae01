package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"charity-backend/internal/domain"
)

// CampaignFilter 列表查询参数；零值即不过滤
type CampaignFilter struct {
	Category domain.Category
	Location string
	Search   string
	Ordering string // goal / amount_raised / created_at，前缀 "-" 为降序
	Featured *bool
	Active   *bool
}

var ErrInvalidOrdering = errors.New("invalid ordering")

var orderColumns = map[string]string{
	"goal":          "goal",
	"amount_raised": "amount_raised",
	"amountRaised":  "amount_raised",
	"created_at":    "created_at",
	"createdAt":     "created_at",
}

// ParseOrdering 默认按创建时间倒序
func ParseOrdering(s string) (clause.OrderByColumn, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}, nil
	}
	desc := strings.HasPrefix(s, "-")
	col, ok := orderColumns[strings.TrimPrefix(s, "-")]
	if !ok {
		return clause.OrderByColumn{}, fmt.Errorf("%w: %q", ErrInvalidOrdering, s)
	}
	return clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc}, nil
}

// Scope 把过滤条件翻译成查询；不含排序与分页
func (f CampaignFilter) Scope(q *gorm.DB) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("location = ?", loc)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	return q
}

type CampaignRepo struct{ db *gorm.DB }

func NewCampaignRepo(db *gorm.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) List(ctx context.Context, f CampaignFilter, offset, limit int) ([]domain.Campaign, int64, error) {
	order, err := ParseOrdering(f.Ordering)
	if err != nil {
		return nil, 0, err
	}
	q := f.Scope(r.db.WithContext(ctx).Model(&domain.Campaign{})).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Campaign
	err = q.Order(order).Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: order.Desc}).
		Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

func (r *CampaignRepo) FindByID(ctx context.Context, id string) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindForUpdate 事务内读取并锁住活动行。
// sqlite 不支持 FOR UPDATE，写事务本身已串行（单连接）。
func (r *CampaignRepo) FindForUpdate(ctx context.Context, id string) (*domain.Campaign, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var c domain.Campaign
	err := q.Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SetAmountRaised 写回在 Go 侧用 decimal 算好的余额；只给 ledger 用
func (r *CampaignRepo) SetAmountRaised(ctx context.Context, id string, v decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Campaign{}).Where("id = ?", id).
		Update("amount_raised", v.StringFixed(domain.MoneyScale))
	return res.RowsAffected == 1, res.Error
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Update amount_raised / created_* 不在可写列表内
func (r *CampaignRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	delete(fields, "amount_raised")
	delete(fields, "created_at")
	delete(fields, "created_by_id")
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Campaign{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteCascade 连同评论、捐款一起删除；调用方负责事务
func (r *CampaignRepo) DeleteCascade(ctx context.Context, id string) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("campaign_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("campaign_id = ?", id).Delete(&domain.Donation{}).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ?", id).Delete(&domain.Campaign{})
	return res.RowsAffected > 0, res.Error
}

type CampaignStats struct {
	Total        int64
	Active       int64
	AmountRaised decimal.Decimal
}

func (r *CampaignRepo) Stats(ctx context.Context) (CampaignStats, error) {
	var s CampaignStats
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Campaign{}).Count(&s.Total).Error; err != nil {
		return s, err
	}
	if err := db.Model(&domain.Campaign{}).Where("is_active = ?", true).Count(&s.Active).Error; err != nil {
		return s, err
	}
	// 合计放在 Go 里做：sqlite 的 SUM 会走 REAL
	var raised []decimal.Decimal
	if err := db.Model(&domain.Campaign{}).Pluck("amount_raised", &raised).Error; err != nil {
		return s, err
	}
	s.AmountRaised = decimal.Zero
	for _, v := range raised {
		s.AmountRaised = s.AmountRaised.Add(v)
	}
	return s, nil
}
