package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"charity-backend/internal/access"
	"charity-backend/internal/apperr"
	"charity-backend/internal/domain"
	"charity-backend/internal/repo"
	"charity-backend/pkg/utils"
)

type CampaignQuery struct {
	Paging
	Category string `form:"category"`
	Location string `form:"location"`
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
	Featured *bool  `form:"featured"`
}

// CampaignInput 创建用；amount_raised 与创建信息由服务端决定
type CampaignInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Goal        decimal.Decimal `json:"goal"`
	Category    domain.Category `json:"category"`
	Location    string          `json:"location"`
	IsActive    *bool           `json:"isActive"`
	Featured    *bool           `json:"featured"`
}

// CampaignPatch 更新用；nil 字段不修改
type CampaignPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Goal        *decimal.Decimal `json:"goal"`
	Category    *domain.Category `json:"category"`
	Location    *string          `json:"location"`
	IsActive    *bool            `json:"isActive"`
	Featured    *bool            `json:"featured"`
}

type CampaignService struct {
	db          *gorm.DB
	repo        *repo.CampaignRepo
	pageSize    int
	maxPageSize int
}

func NewCampaignService(db *gorm.DB, pageSize, maxPageSize int) *CampaignService {
	if pageSize <= 0 {
		pageSize = 6
	}
	if maxPageSize < pageSize {
		maxPageSize = pageSize
	}
	return &CampaignService{db: db, repo: repo.NewCampaignRepo(db), pageSize: pageSize, maxPageSize: maxPageSize}
}

func (s *CampaignService) filter(q CampaignQuery) (repo.CampaignFilter, error) {
	f := repo.CampaignFilter{
		Category: domain.Category(strings.TrimSpace(q.Category)),
		Location: q.Location,
		Search:   q.Search,
		Ordering: q.Ordering,
		Featured: q.Featured,
	}
	if f.Category != "" && !f.Category.Valid() {
		return f, apperr.BadRequest("invalid category")
	}
	if _, err := repo.ParseOrdering(f.Ordering); err != nil {
		return f, apperr.BadRequest("invalid ordering; use goal, amount_raised or created_at")
	}
	return f, nil
}

// List 公开列表：页码分页，默认按创建时间倒序
func (s *CampaignService) List(ctx context.Context, q CampaignQuery) (List[CampaignView], error) {
	f, err := s.filter(q)
	if err != nil {
		return List[CampaignView]{}, err
	}
	page, size, offset := q.Paging.Resolve(s.pageSize, s.maxPageSize)
	items, total, err := s.repo.List(ctx, f, offset, size)
	if err != nil {
		return List[CampaignView]{}, apperr.Internal("list campaigns failed", err)
	}
	return List[CampaignView]{List: mapViews(items, NewCampaignView), Total: total, Page: page, Size: size}, nil
}

// AdminList 后台列表：偏移分页，最新在前
func (s *CampaignService) AdminList(ctx context.Context, q CampaignQuery, w Window) (List[CampaignView], error) {
	f, err := s.filter(q)
	if err != nil {
		return List[CampaignView]{}, err
	}
	offset, limit := w.Resolve()
	items, total, err := s.repo.List(ctx, f, offset, limit)
	if err != nil {
		return List[CampaignView]{}, apperr.Internal("list campaigns failed", err)
	}
	return windowList(mapViews(items, NewCampaignView), total, offset, limit), nil
}

func (s *CampaignService) load(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load campaign failed", err)
	}
	if c == nil {
		return nil, apperr.NotFound("campaign not found")
	}
	return c, nil
}

func (s *CampaignService) Get(ctx context.Context, id string) (CampaignView, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return CampaignView{}, err
	}
	return NewCampaignView(c), nil
}

func checkGoal(goal decimal.Decimal) error {
	if err := domain.CheckAmount(goal, domain.MaxGoal); err != nil {
		return apperr.BadRequest("goal: " + err.Error())
	}
	return nil
}

func checkTitle(title string) error {
	if title == "" {
		return apperr.BadRequest("title is required")
	}
	if len(title) > 255 {
		return apperr.BadRequest("title must be at most 255 characters")
	}
	return nil
}

// Create 调用方已具备 manage_campaigns
func (s *CampaignService) Create(ctx context.Context, p access.Principal, in CampaignInput) (CampaignView, error) {
	c := &domain.Campaign{
		ID:          utils.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Goal:        in.Goal,
		Category:    in.Category,
		Location:    strings.TrimSpace(in.Location),
		IsActive:    true,
	}
	if err := checkTitle(c.Title); err != nil {
		return CampaignView{}, err
	}
	if c.Description == "" {
		return CampaignView{}, apperr.BadRequest("description is required")
	}
	if err := checkGoal(c.Goal); err != nil {
		return CampaignView{}, err
	}
	if c.Category == "" {
		c.Category = domain.DefaultCategory
	}
	if !c.Category.Valid() {
		return CampaignView{}, apperr.BadRequest("invalid category")
	}
	if c.Location == "" {
		c.Location = domain.DefaultLocation
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.Featured != nil {
		c.Featured = *in.Featured
	}
	if !p.Anonymous() {
		uid := p.UserID
		c.CreatedByID = &uid
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return CampaignView{}, apperr.Internal("create campaign failed", err)
	}
	return NewCampaignView(c), nil
}

func (s *CampaignService) Update(ctx context.Context, id string, in CampaignPatch) (CampaignView, error) {
	fields := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if err := checkTitle(t); err != nil {
			return CampaignView{}, err
		}
		fields["title"] = t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return CampaignView{}, apperr.BadRequest("description is required")
		}
		fields["description"] = d
	}
	if in.Goal != nil {
		if err := checkGoal(*in.Goal); err != nil {
			return CampaignView{}, err
		}
		fields["goal"] = *in.Goal
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return CampaignView{}, apperr.BadRequest("invalid category")
		}
		fields["category"] = *in.Category
	}
	if in.Location != nil {
		loc := strings.TrimSpace(*in.Location)
		if loc == "" {
			loc = domain.DefaultLocation
		}
		fields["location"] = loc
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if in.Featured != nil {
		fields["featured"] = *in.Featured
	}

	if _, err := s.load(ctx, id); err != nil {
		return CampaignView{}, err
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return CampaignView{}, apperr.Internal("update campaign failed", err)
	}
	return s.Get(ctx, id)
}

// Delete 连同评论与捐款一起删除
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repo.NewCampaignRepo(tx).DeleteCascade(ctx, id)
		if err != nil {
			return apperr.Internal("delete campaign failed", err)
		}
		if !ok {
			return apperr.NotFound("campaign not found")
		}
		return nil
	})
	var ae *apperr.Error
	if err != nil && !errors.As(err, &ae) {
		return apperr.Internal("delete campaign failed", err)
	}
	return err
}
