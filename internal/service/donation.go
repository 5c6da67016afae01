package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"charity-backend/internal/access"
	"charity-backend/internal/apperr"
	"charity-backend/internal/domain"
	"charity-backend/internal/ledger"
	"charity-backend/internal/notify"
	"charity-backend/internal/repo"
)

// DonationNotifier 捐款确认邮件
type DonationNotifier interface {
	DonationConfirmation(ctx context.Context, to, donorName, campaignTitle string, amount decimal.Decimal, at time.Time) error
}

type DonationInput struct {
	CampaignID string          `json:"campaign"`
	Amount     decimal.Decimal `json:"amount"`
}

type DonationQuery struct {
	Window
	Campaign string `form:"campaign"`
	Donor    string `form:"donor"`
	Search   string `form:"search"`
}

type DonationService struct {
	donations *repo.DonationRepo
	donors    *repo.DonorRepo
	ledger    *ledger.Ledger
	access    *access.Evaluator
	notifier  DonationNotifier
	log       *zap.Logger
}

func NewDonationService(db *gorm.DB, l *ledger.Ledger, ev *access.Evaluator, n DonationNotifier, log *zap.Logger) *DonationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DonationService{
		donations: repo.NewDonationRepo(db),
		donors:    repo.NewDonorRepo(db),
		ledger:    l,
		access:    ev,
		notifier:  n,
		log:       log,
	}
}

// donorOf 可能返回 nil（管理员账号通常没有捐赠人档案）
func (s *DonationService) donorOf(ctx context.Context, p access.Principal) (*domain.Donor, error) {
	if p.Anonymous() {
		return nil, nil
	}
	d, err := s.donors.FindByUserID(ctx, p.UserID)
	if err != nil {
		return nil, apperr.Internal("load donor failed", err)
	}
	return d, nil
}

// Create 入账后发确认邮件；邮件失败不影响捐款
func (s *DonationService) Create(ctx context.Context, p access.Principal, in DonationInput) (DonationView, error) {
	donor, err := s.donorOf(ctx, p)
	if err != nil {
		return DonationView{}, err
	}
	if donor == nil {
		return DonationView{}, apperr.BadRequest("donor profile not found for this user")
	}
	d, err := s.ledger.Record(ctx, donor.ID, in.CampaignID, in.Amount)
	if err != nil {
		return DonationView{}, err
	}

	hooks := notify.NewAfterCommit(s.log)
	if donor.User != nil && d.Campaign != nil {
		to, name, title := donor.User.Email, donor.Name, d.Campaign.Title
		amount, at := d.Amount, d.DonatedAt
		hooks.Add("donation_confirmation_email", func(ctx context.Context) error {
			return s.notifier.DonationConfirmation(ctx, to, name, title, amount, at)
		})
	}
	hooks.Run(ctx)
	return NewDonationView(d), nil
}

// Mine 当前用户的全部捐款，最新在前
func (s *DonationService) Mine(ctx context.Context, p access.Principal) ([]DonationView, error) {
	donor, err := s.donorOf(ctx, p)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return []DonationView{}, nil
	}
	items, _, err := s.donations.List(ctx, repo.DonationFilter{DonorID: donor.ID}, 0, -1)
	if err != nil {
		return nil, apperr.Internal("list donations failed", err)
	}
	return mapViews(items, NewDonationView), nil
}

// ListOwn 公开接口只能看到自己的捐款
func (s *DonationService) ListOwn(ctx context.Context, p access.Principal, q DonationQuery) (List[DonationView], error) {
	offset, limit := q.Window.Resolve()
	donor, err := s.donorOf(ctx, p)
	if err != nil {
		return List[DonationView]{}, err
	}
	if donor == nil {
		return windowList([]DonationView{}, 0, offset, limit), nil
	}
	f := repo.DonationFilter{DonorID: donor.ID, CampaignID: q.Campaign}
	items, total, err := s.donations.List(ctx, f, offset, limit)
	if err != nil {
		return List[DonationView]{}, apperr.Internal("list donations failed", err)
	}
	return windowList(mapViews(items, NewDonationView), total, offset, limit), nil
}

func (s *DonationService) GetOwn(ctx context.Context, p access.Principal, id string) (DonationView, error) {
	donor, err := s.donorOf(ctx, p)
	if err != nil {
		return DonationView{}, err
	}
	d, err := s.donations.FindByID(ctx, id)
	if err != nil {
		return DonationView{}, apperr.Internal("load donation failed", err)
	}
	// 别人的捐款按不存在处理
	if d == nil || donor == nil || d.DonorID != donor.ID {
		return DonationView{}, apperr.NotFound("donation not found")
	}
	return NewDonationView(d), nil
}

// Delete 捐款人本人或 manage_finances 可冲回
func (s *DonationService) Delete(ctx context.Context, p access.Principal, id string) error {
	if p.Anonymous() {
		return apperr.Unauthorized("authentication required")
	}
	finance, err := s.access.Allow(ctx, p, access.ManageFinances)
	if err != nil {
		return apperr.Internal("check capability failed", err)
	}
	donor, err := s.donorOf(ctx, p)
	if err != nil {
		return err
	}
	_, err = s.ledger.Reverse(ctx, id, func(d *domain.Donation) error {
		if finance || (donor != nil && d.DonorID == donor.ID) {
			return nil
		}
		return apperr.Forbidden("you do not have permission to delete this donation")
	})
	return err
}

func (s *DonationService) AdminList(ctx context.Context, q DonationQuery) (List[DonationView], error) {
	offset, limit := q.Window.Resolve()
	f := repo.DonationFilter{CampaignID: q.Campaign, DonorID: q.Donor, Search: q.Search}
	items, total, err := s.donations.List(ctx, f, offset, limit)
	if err != nil {
		return List[DonationView]{}, apperr.Internal("list donations failed", err)
	}
	return windowList(mapViews(items, NewDonationView), total, offset, limit), nil
}

func (s *DonationService) AdminGet(ctx context.Context, id string) (DonationView, error) {
	d, err := s.donations.FindByID(ctx, id)
	if err != nil {
		return DonationView{}, apperr.Internal("load donation failed", err)
	}
	if d == nil {
		return DonationView{}, apperr.NotFound("donation not found")
	}
	return NewDonationView(d), nil
}
