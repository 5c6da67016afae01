// Package ledger is the only writer of Campaign.AmountRaised.
//
// Every donation insert or delete happens in the same transaction as the
// matching balance adjustment. The campaign row is read under a row lock
// (FOR UPDATE on postgres/mysql; sqlite runs one writer at a time), the new
// balance is computed with exact decimals in Go and written back, so the
// database never does arithmetic on the amount.
package ledger

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"charity-backend/internal/apperr"
	"charity-backend/internal/domain"
	"charity-backend/internal/repo"
	"charity-backend/pkg/utils"
)

var (
	donationsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_donations_recorded_total", Help: "Donations committed to the ledger",
	})
	donationsReversed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_donations_reversed_total", Help: "Donations reversed from the ledger",
	})
)

func init() { prometheus.MustRegister(donationsRecorded, donationsReversed) }

// ErrNegativeBalance 冲回会让 amount_raised < 0（说明账已经不平）
var ErrNegativeBalance = errors.New("ledger: reversal would make amount raised negative")

type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Ledger { return &Ledger{db: db, now: time.Now} }

// Record 创建捐款并累加活动余额。
// 活动不存在、已停用、捐赠人档案缺失、金额非法都返回 400。
func (l *Ledger) Record(ctx context.Context, donorID, campaignID string, amount decimal.Decimal) (*domain.Donation, error) {
	if err := domain.CheckAmount(amount, domain.MaxDonation); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}
	if donorID == "" {
		return nil, apperr.BadRequest("donor profile not found for this user")
	}
	if campaignID == "" {
		return nil, apperr.BadRequest("campaign is required")
	}

	var out *domain.Donation
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		donor, err := repo.NewDonorRepo(tx).FindByID(ctx, donorID)
		if err != nil {
			return apperr.Internal("load donor failed", err)
		}
		if donor == nil {
			return apperr.BadRequest("donor profile not found for this user")
		}
		campaigns := repo.NewCampaignRepo(tx)
		campaign, err := campaigns.FindForUpdate(ctx, campaignID)
		if err != nil {
			return apperr.Internal("load campaign failed", err)
		}
		if campaign == nil {
			return apperr.BadRequest("campaign does not exist")
		}
		if !campaign.IsActive {
			return apperr.BadRequest("campaign is not accepting donations")
		}

		d := &domain.Donation{
			ID:         utils.NewID(),
			DonorID:    donorID,
			CampaignID: campaignID,
			Amount:     amount,
			DonatedAt:  l.now(),
		}
		if err := repo.NewDonationRepo(tx).Create(ctx, d); err != nil {
			return apperr.Internal("create donation failed", err)
		}
		raised := campaign.AmountRaised.Add(amount)
		ok, err := campaigns.SetAmountRaised(ctx, campaignID, raised)
		if err != nil {
			return apperr.Internal("credit campaign failed", err)
		}
		if !ok {
			return apperr.BadRequest("campaign does not exist")
		}
		campaign.AmountRaised = raised
		d.Campaign = campaign
		d.Donor = donor
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	donationsRecorded.Inc()
	return out, nil
}

// Authorize 在删除前检查调用方是否有权冲回这笔捐款
type Authorize func(d *domain.Donation) error

// Reverse 删除捐款并扣减活动余额；同一笔捐款并发冲回只会成功一次
func (l *Ledger) Reverse(ctx context.Context, donationID string, authorize Authorize) (*domain.Donation, error) {
	var out *domain.Donation
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		donations := repo.NewDonationRepo(tx)
		d, err := donations.FindByID(ctx, donationID)
		if err != nil {
			return apperr.Internal("load donation failed", err)
		}
		if d == nil {
			return apperr.NotFound("donation not found")
		}
		if authorize != nil {
			if err := authorize(d); err != nil {
				return err
			}
		}
		deleted, err := donations.Delete(ctx, d.ID)
		if err != nil {
			return apperr.Internal("delete donation failed", err)
		}
		if !deleted {
			return apperr.NotFound("donation not found")
		}
		campaigns := repo.NewCampaignRepo(tx)
		campaign, err := campaigns.FindForUpdate(ctx, d.CampaignID)
		if err != nil {
			return apperr.Internal("load campaign failed", err)
		}
		if campaign == nil {
			return apperr.NotFound("campaign not found")
		}
		if !campaign.AmountRaised.GreaterThanOrEqual(d.Amount) {
			return &apperr.Error{Code: http.StatusBadRequest, Msg: "campaign amount raised cannot go negative", Err: ErrNegativeBalance}
		}
		if _, err := campaigns.SetAmountRaised(ctx, d.CampaignID, campaign.AmountRaised.Sub(d.Amount)); err != nil {
			return apperr.Internal("debit campaign failed", err)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	donationsReversed.Inc()
	return out, nil
}
