package ledger

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"charity-backend/internal/apperr"
	"charity-backend/internal/domain"
	"charity-backend/internal/repo"
	"charity-backend/internal/testutil"
	"charity-backend/pkg/utils"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	db       *gorm.DB
	ledger   *Ledger
	donor    *domain.Donor
	campaign *domain.Campaign
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	u := &domain.User{ID: utils.NewID(), Username: "amina", Email: "amina@example.com", PasswordHash: "x"}
	donor := &domain.Donor{ID: utils.NewID(), UserID: u.ID, Name: "Amina"}
	c := &domain.Campaign{
		ID: utils.NewID(), Title: "Clean water", Description: "Boreholes",
		Goal: dec("1000.00"), Category: domain.CategoryWater, Location: "Kisumu", IsActive: true,
	}
	for _, m := range []any{u, donor, c} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed %T: %v", m, err)
		}
	}
	return fixture{db: db, ledger: New(db), donor: donor, campaign: c}
}

func (f fixture) raised(t *testing.T) decimal.Decimal {
	t.Helper()
	var c domain.Campaign
	if err := f.db.First(&c, "id = ?", f.campaign.ID).Error; err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	return c.AmountRaised
}

func (f fixture) liveSum(t *testing.T) decimal.Decimal {
	t.Helper()
	var ds []domain.Donation
	if err := f.db.Where("campaign_id = ?", f.campaign.ID).Find(&ds).Error; err != nil {
		t.Fatalf("load donations: %v", err)
	}
	sum := decimal.Zero
	for _, d := range ds {
		sum = sum.Add(d.Amount)
	}
	return sum
}

func TestRecordAndReverseScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.ledger.Record(ctx, f.donor.ID, f.campaign.ID, dec("250.00"))
	if err != nil {
		t.Fatalf("Record(250) error: %v", err)
	}
	if _, err := f.ledger.Record(ctx, f.donor.ID, f.campaign.ID, dec("100.00")); err != nil {
		t.Fatalf("Record(100) error: %v", err)
	}
	if got := f.raised(t); !got.Equal(dec("350.00")) {
		t.Fatalf("amount raised = %s, want 350.00", got)
	}
	if _, err := f.ledger.Reverse(ctx, first.ID, nil); err != nil {
		t.Fatalf("Reverse() error: %v", err)
	}
	if got := f.raised(t); !got.Equal(dec("100.00")) {
		t.Fatalf("amount raised = %s, want 100.00", got)
	}
}

func TestRecordRejectsBadInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		donorID    string
		campaignID string
		amount     string
	}{
		{"zero amount", f.donor.ID, f.campaign.ID, "0"},
		{"negative amount", f.donor.ID, f.campaign.ID, "-10.00"},
		{"three decimals", f.donor.ID, f.campaign.ID, "1.005"},
		{"missing campaign", f.donor.ID, "nope", "10.00"},
		{"missing donor", "nope", f.campaign.ID, "10.00"},
		{"no donor profile", "", f.campaign.ID, "10.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Record(ctx, tt.donorID, tt.campaignID, dec(tt.amount))
			if code := apperr.CodeOf(err); code != http.StatusBadRequest {
				t.Fatalf("Record() code = %d (%v), want 400", code, err)
			}
		})
	}
	if got := f.raised(t); !got.IsZero() {
		t.Fatalf("amount raised = %s after rejected donations, want 0", got)
	}
	var n int64
	f.db.Model(&domain.Donation{}).Count(&n)
	if n != 0 {
		t.Fatalf("donation rows = %d, want 0", n)
	}
}

func TestRecordRejectsInactiveCampaign(t *testing.T) {
	f := setup(t)
	if err := f.db.Model(&domain.Campaign{}).Where("id = ?", f.campaign.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err := f.ledger.Record(context.Background(), f.donor.ID, f.campaign.ID, dec("5.00"))
	if !apperr.Is(err, http.StatusBadRequest) {
		t.Fatalf("Record() error = %v, want 400", err)
	}
}

func TestReverseTwiceIsNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	d, err := f.ledger.Record(ctx, f.donor.ID, f.campaign.ID, dec("40.00"))
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if _, err := f.ledger.Reverse(ctx, d.ID, nil); err != nil {
		t.Fatalf("first Reverse() error: %v", err)
	}
	if _, err := f.ledger.Reverse(ctx, d.ID, nil); !apperr.Is(err, http.StatusNotFound) {
		t.Fatalf("second Reverse() error = %v, want 404", err)
	}
	if got := f.raised(t); !got.IsZero() {
		t.Fatalf("amount raised = %s, want 0", got)
	}
}

func TestReverseAuthorizeDenialKeepsDonation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	d, err := f.ledger.Record(ctx, f.donor.ID, f.campaign.ID, dec("15.50"))
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	deny := func(*domain.Donation) error { return apperr.Forbidden("not yours") }
	if _, err := f.ledger.Reverse(ctx, d.ID, deny); !apperr.Is(err, http.StatusForbidden) {
		t.Fatalf("Reverse() error = %v, want 403", err)
	}
	if got := f.raised(t); !got.Equal(dec("15.50")) {
		t.Fatalf("amount raised = %s, want 15.50", got)
	}
}

func TestReverseNeverGoesNegative(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	d, err := f.ledger.Record(ctx, f.donor.ID, f.campaign.ID, dec("80.00"))
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	// 人为制造账不平：余额小于捐款额
	if err := f.db.Model(&domain.Campaign{}).Where("id = ?", f.campaign.ID).Update("amount_raised", dec("10.00")).Error; err != nil {
		t.Fatalf("corrupt balance: %v", err)
	}
	_, err = f.ledger.Reverse(ctx, d.ID, nil)
	if !errors.Is(err, ErrNegativeBalance) {
		t.Fatalf("Reverse() error = %v, want ErrNegativeBalance", err)
	}
	if got := f.raised(t); !got.Equal(dec("10.00")) {
		t.Fatalf("amount raised = %s, want unchanged 10.00", got)
	}
	var n int64
	f.db.Model(&domain.Donation{}).Where("id = ?", d.ID).Count(&n)
	if n != 1 {
		t.Fatalf("donation was deleted despite the rollback")
	}
}

// 这些金额在 float64 下加减会留下尾差（0.7+0.1 != 0.8）
func TestCentAmountsStayExact(t *testing.T) {
	tests := []struct {
		name    string
		record  []string
		reverse []int // 按 record 下标冲回
	}{
		{"record then reverse in order", []string{"0.70", "0.10", "0.20"}, []int{0, 1, 2}},
		{"reverse largest first", []string{"0.10", "0.10", "0.70"}, []int{2, 0, 1}},
		{"mixed cents", []string{"19.99", "0.01", "33.33", "66.67"}, []int{1, 3, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			check := func(step string) {
				t.Helper()
				if got, want := f.raised(t), f.liveSum(t); !got.Equal(want) {
					t.Fatalf("%s: amount raised = %s, live sum = %s", step, got, want)
				}
			}

			ids := make([]string, len(tt.record))
			total := decimal.Zero
			for i, amt := range tt.record {
				d, err := f.ledger.Record(ctx, f.donor.ID, f.campaign.ID, dec(amt))
				if err != nil {
					t.Fatalf("Record(%s) error: %v", amt, err)
				}
				ids[i] = d.ID
				total = total.Add(dec(amt))
				check("record " + amt)
			}
			stats, err := repo.NewCampaignRepo(f.db).Stats(ctx)
			if err != nil {
				t.Fatalf("Stats() error: %v", err)
			}
			if !stats.AmountRaised.Equal(total) {
				t.Fatalf("stats amount raised = %s, want %s", stats.AmountRaised, total)
			}

			for _, i := range tt.reverse {
				if _, err := f.ledger.Reverse(ctx, ids[i], nil); err != nil {
					t.Fatalf("Reverse(%s) error: %v", tt.record[i], err)
				}
				check("reverse " + tt.record[i])
			}
			if got := f.raised(t); !got.IsZero() {
				t.Fatalf("amount raised = %s after reversing everything, want 0", got)
			}
		})
	}
}

func TestRandomSequenceKeepsInvariant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	var live []string

	for i := 0; i < 60; i++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			idx := rng.Intn(len(live))
			if _, err := f.ledger.Reverse(ctx, live[idx], nil); err != nil {
				t.Fatalf("Reverse() error: %v", err)
			}
			live = append(live[:idx], live[idx+1:]...)
		} else {
			amt := decimal.New(int64(rng.Intn(100000)+1), -2)
			d, err := f.ledger.Record(ctx, f.donor.ID, f.campaign.ID, amt)
			if err != nil {
				t.Fatalf("Record(%s) error: %v", amt, err)
			}
			live = append(live, d.ID)
		}
		if got, want := f.raised(t), f.liveSum(t); !got.Equal(want) {
			t.Fatalf("step %d: amount raised = %s, live sum = %s", i, got, want)
		}
	}
}

func TestConcurrentRecordAndReverse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seed, err := f.ledger.Record(ctx, f.donor.ID, f.campaign.ID, dec("500.00"))
	if err != nil {
		t.Fatalf("seed Record() error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledger.Record(ctx, f.donor.ID, f.campaign.ID, dec("10.00")); err != nil {
				t.Errorf("Record() error: %v", err)
			}
		}()
	}
	var reversed sync.Map
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.ledger.Reverse(ctx, seed.ID, nil)
			reversed.Store(i, err == nil)
		}(i)
	}
	wg.Wait()

	wins := 0
	reversed.Range(func(_, v any) bool {
		if v.(bool) {
			wins++
		}
		return true
	})
	if wins != 1 {
		t.Fatalf("successful reversals = %d, want 1", wins)
	}
	if got := f.raised(t); !got.Equal(dec("200.00")) {
		t.Fatalf("amount raised = %s, want 200.00", got)
	}
	if got, want := f.raised(t), f.liveSum(t); !got.Equal(want) {
		t.Fatalf("amount raised = %s, live sum = %s", got, want)
	}
}
