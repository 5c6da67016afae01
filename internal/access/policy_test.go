package access

import (
	"context"
	"errors"
	"testing"

	"charity-backend/internal/domain"
)

var allCaps = []Capability{IsAdmin, ManageCampaigns, ModerateContent, ManageFinances, SuperAdmin}

func TestCapabilitiesByRole(t *testing.T) {
	tests := []struct {
		role    domain.Role
		allowed []Capability
	}{
		{domain.RoleSuperAdmin, allCaps},
		{domain.RoleCampaignManager, []Capability{IsAdmin, ManageCampaigns}},
		{domain.RoleContentModerator, []Capability{IsAdmin, ModerateContent}},
		{domain.RoleFinancialManager, []Capability{IsAdmin, ManageFinances}},
		{domain.Role("owner"), nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			set := Capabilities(tt.role, true)
			want := map[Capability]bool{}
			for _, c := range tt.allowed {
				want[c] = true
			}
			for _, c := range allCaps {
				if got := set.Has(c); got != want[c] {
					t.Fatalf("%s has %s = %v, want %v", tt.role, c, got, want[c])
				}
			}
		})
	}
}

func TestInactiveAdminDeniedEverything(t *testing.T) {
	for _, role := range domain.Roles() {
		set := Capabilities(role, false)
		for _, c := range allCaps {
			if set.Has(c) {
				t.Fatalf("inactive %s granted %s", role, c)
			}
		}
	}
}

func TestContentModeratorDeniedFinanceAndCampaigns(t *testing.T) {
	set := Capabilities(domain.RoleContentModerator, true)
	if set.Has(ManageFinances) || set.Has(ManageCampaigns) {
		t.Fatalf("content_moderator got %v", set)
	}
}

type fakeAdmins struct {
	byUser map[string]*domain.Admin
	calls  int
	err    error
}

func (f *fakeAdmins) FindByUserID(_ context.Context, userID string) (*domain.Admin, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byUser[userID], nil
}

func TestEvaluatorAllow(t *testing.T) {
	admins := &fakeAdmins{byUser: map[string]*domain.Admin{
		"u-fin":      {UserID: "u-fin", Role: domain.RoleFinancialManager, IsActive: true},
		"u-disabled": {UserID: "u-disabled", Role: domain.RoleSuperAdmin, IsActive: false},
	}}
	e := NewEvaluator(admins)
	ctx := context.Background()

	tests := []struct {
		name string
		p    Principal
		c    Capability
		want bool
	}{
		{"anonymous", Principal{}, IsAdmin, false},
		{"donor without admin record", Principal{UserID: "u-donor"}, IsAdmin, false},
		{"finance allowed", Principal{UserID: "u-fin"}, ManageFinances, true},
		{"finance denied campaigns", Principal{UserID: "u-fin"}, ManageCampaigns, false},
		{"disabled super admin", Principal{UserID: "u-disabled"}, SuperAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Allow(ctx, tt.p, tt.c)
			if err != nil {
				t.Fatalf("Allow() error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Allow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluatorAnonymousSkipsLookup(t *testing.T) {
	admins := &fakeAdmins{err: errors.New("must not be called")}
	ok, err := NewEvaluator(admins).Allow(context.Background(), Principal{}, SuperAdmin)
	if err != nil || ok {
		t.Fatalf("Allow() = %v, %v; want false, nil", ok, err)
	}
	if admins.calls != 0 {
		t.Fatalf("lookup calls = %d, want 0", admins.calls)
	}
}
