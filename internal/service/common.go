// Package service implements the campaign, donation, comment, donor and
// admin resources on top of the repositories, the ledger and the access
// evaluator.
package service

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"charity-backend/internal/domain"
)

// List 列表统一返回结构
type List[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// Paging 页码分页；page 从 1 开始，size 超过上限时取上限
type Paging struct {
	Page int `form:"page"`
	Size int `form:"page_size"`
}

func (p Paging) Resolve(def, max int) (page, size, offset int) {
	page, size = p.Page, p.Size
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = def
	}
	if size > max {
		size = max
	}
	// 防止 (page-1)*size 溢出成负数
	if limit := math.MaxInt32 / size; page > limit {
		page = limit
	}
	return page, size, (page - 1) * size
}

// Window 偏移分页（后台列表）：默认 20，最大 100
type Window struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

func (w Window) Resolve() (offset, limit int) {
	offset, limit = w.Offset, w.Limit
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

func windowList[T any](items []T, total int64, offset, limit int) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{List: items, Total: total, Page: offset/limit + 1, Size: limit}
}

func money(d decimal.Decimal) string { return d.StringFixed(domain.MoneyScale) }

/* ---------- views ---------- */

type CampaignView struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Goal         string          `json:"goal"`
	AmountRaised string          `json:"amountRaised"`
	Category     domain.Category `json:"category"`
	Location     string          `json:"location"`
	IsActive     bool            `json:"isActive"`
	Featured     bool            `json:"featured"`
	CreatedBy    *string         `json:"createdBy"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func NewCampaignView(c *domain.Campaign) CampaignView {
	return CampaignView{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Goal:         money(c.Goal),
		AmountRaised: money(c.AmountRaised),
		Category:     c.Category,
		Location:     c.Location,
		IsActive:     c.IsActive,
		Featured:     c.Featured,
		CreatedBy:    c.CreatedByID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type CampaignRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type DonationView struct {
	ID        string       `json:"id"`
	Amount    string       `json:"amount"`
	Campaign  *CampaignRef `json:"campaign"`
	DonorID   string       `json:"donorId"`
	DonorName string       `json:"donorName,omitempty"`
	DonatedAt time.Time    `json:"donatedAt"`
}

func NewDonationView(d *domain.Donation) DonationView {
	v := DonationView{
		ID:        d.ID,
		Amount:    money(d.Amount),
		Campaign:  &CampaignRef{ID: d.CampaignID},
		DonorID:   d.DonorID,
		DonatedAt: d.DonatedAt,
	}
	if d.Campaign != nil {
		v.Campaign.Title = d.Campaign.Title
	}
	if d.Donor != nil {
		v.DonorName = d.Donor.Name
	}
	return v
}

type CommentView struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign"`
	Text       string    `json:"text"`
	DonorName  string    `json:"donorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewCommentView(c *domain.Comment) CommentView {
	v := CommentView{ID: c.ID, CampaignID: c.CampaignID, Text: c.Text, CreatedAt: c.CreatedAt}
	if c.Donor != nil {
		v.DonorName = c.Donor.Name
	}
	return v
}

type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type DonorView struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	User *UserRef `json:"user"`
}

func NewDonorView(d *domain.Donor) DonorView {
	v := DonorView{ID: d.ID, Name: d.Name}
	if d.User != nil {
		v.User = &UserRef{ID: d.User.ID, Username: d.User.Username, Email: d.User.Email}
	}
	return v
}

type AdminView struct {
	ID          string      `json:"id"`
	Role        domain.Role `json:"role"`
	RoleDisplay string      `json:"roleDisplay"`
	IsActive    bool        `json:"isActive"`
	UserID      string      `json:"userId"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FirstName   string      `json:"firstName"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func NewAdminView(a *domain.Admin) AdminView {
	v := AdminView{
		ID:          a.ID,
		Role:        a.Role,
		RoleDisplay: a.Role.Display(),
		IsActive:    a.IsActive,
		UserID:      a.UserID,
		CreatedAt:   a.CreatedAt,
	}
	if a.User != nil {
		v.Username = a.User.Username
		v.Email = a.User.Email
		v.FirstName = a.User.FirstName
	}
	return v
}

func mapViews[M any, V any](items []M, f func(*M) V) []V {
	out := make([]V, 0, len(items))
	for i := range items {
		out = append(out, f(&items[i]))
	}
	return out
}
