package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"charity-backend/internal/access"
	"charity-backend/internal/apperr"
	"charity-backend/internal/domain"
	"charity-backend/internal/repo"
	"charity-backend/pkg/utils"
)

const maxCommentLen = 2000

type CommentInput struct {
	CampaignID string `json:"campaign"`
	Text       string `json:"text"`
}

type CommentQuery struct {
	Window
	Campaign string `form:"campaign"`
}

type CommentService struct {
	comments  *repo.CommentRepo
	campaigns *repo.CampaignRepo
	donors    *repo.DonorRepo
	access    *access.Evaluator
}

func NewCommentService(db *gorm.DB, ev *access.Evaluator) *CommentService {
	return &CommentService{
		comments:  repo.NewCommentRepo(db),
		campaigns: repo.NewCampaignRepo(db),
		donors:    repo.NewDonorRepo(db),
		access:    ev,
	}
}

func checkText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.BadRequest("text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "", apperr.BadRequest("text must be at most 2000 characters")
	}
	return text, nil
}

// List 公开可读，可按活动过滤，最新在前
func (s *CommentService) List(ctx context.Context, q CommentQuery) (List[CommentView], error) {
	offset, limit := q.Window.Resolve()
	items, total, err := s.comments.List(ctx, repo.CommentFilter{CampaignID: q.Campaign}, offset, limit)
	if err != nil {
		return List[CommentView]{}, apperr.Internal("list comments failed", err)
	}
	return windowList(mapViews(items, NewCommentView), total, offset, limit), nil
}

func (s *CommentService) load(ctx context.Context, id string) (*domain.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load comment failed", err)
	}
	if c == nil {
		return nil, apperr.NotFound("comment not found")
	}
	return c, nil
}

func (s *CommentService) Get(ctx context.Context, id string) (CommentView, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return CommentView{}, err
	}
	return NewCommentView(c), nil
}

// Create 必须有捐赠人档案
func (s *CommentService) Create(ctx context.Context, p access.Principal, in CommentInput) (CommentView, error) {
	if p.Anonymous() {
		return CommentView{}, apperr.Unauthorized("authentication required")
	}
	text, err := checkText(in.Text)
	if err != nil {
		return CommentView{}, err
	}
	donor, err := s.donors.FindByUserID(ctx, p.UserID)
	if err != nil {
		return CommentView{}, apperr.Internal("load donor failed", err)
	}
	if donor == nil {
		return CommentView{}, apperr.BadRequest("donor profile not found for this user")
	}
	if in.CampaignID == "" {
		return CommentView{}, apperr.BadRequest("campaign is required")
	}
	campaign, err := s.campaigns.FindByID(ctx, in.CampaignID)
	if err != nil {
		return CommentView{}, apperr.Internal("load campaign failed", err)
	}
	if campaign == nil {
		return CommentView{}, apperr.BadRequest("campaign does not exist")
	}
	c := &domain.Comment{ID: utils.NewID(), CampaignID: campaign.ID, DonorID: donor.ID, Text: text}
	if err := s.comments.Create(ctx, c); err != nil {
		return CommentView{}, apperr.Internal("create comment failed", err)
	}
	c.Donor = donor
	return NewCommentView(c), nil
}

// editable 作者本人或 moderate_content
func (s *CommentService) editable(ctx context.Context, p access.Principal, id string) (*domain.Comment, error) {
	if p.Anonymous() {
		return nil, apperr.Unauthorized("authentication required")
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Donor != nil && c.Donor.UserID == p.UserID {
		return c, nil
	}
	ok, err := s.access.Allow(ctx, p, access.ModerateContent)
	if err != nil {
		return nil, apperr.Internal("check capability failed", err)
	}
	if !ok {
		return nil, apperr.Forbidden("you do not have permission to modify this comment")
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, p access.Principal, id, text string) (CommentView, error) {
	text, err := checkText(text)
	if err != nil {
		return CommentView{}, err
	}
	c, err := s.editable(ctx, p, id)
	if err != nil {
		return CommentView{}, err
	}
	if err := s.comments.UpdateText(ctx, c.ID, text); err != nil {
		return CommentView{}, apperr.Internal("update comment failed", err)
	}
	c.Text = text
	return NewCommentView(c), nil
}

func (s *CommentService) Delete(ctx context.Context, p access.Principal, id string) error {
	c, err := s.editable(ctx, p, id)
	if err != nil {
		return err
	}
	ok, err := s.comments.Delete(ctx, c.ID)
	if err != nil {
		return apperr.Internal("delete comment failed", err)
	}
	if !ok {
		return apperr.NotFound("comment not found")
	}
	return nil
}
