// Package access answers capability questions for an authenticated principal.
//
// Capabilities are a pure function of an Admin record's role and active flag;
// callers never see role strings directly.
package access

import "charity-backend/internal/domain"

type Capability string

const (
	IsAdmin         Capability = "is_admin"
	ManageCampaigns Capability = "manage_campaigns"
	ModerateContent Capability = "moderate_content"
	ManageFinances  Capability = "manage_finances"
	SuperAdmin      Capability = "is_super_admin"
)

// Set 能力集合
type Set map[Capability]bool

func (s Set) Has(c Capability) bool { return s[c] }

var grants = map[domain.Role][]Capability{
	domain.RoleSuperAdmin:       {IsAdmin, ManageCampaigns, ModerateContent, ManageFinances, SuperAdmin},
	domain.RoleCampaignManager:  {IsAdmin, ManageCampaigns},
	domain.RoleContentModerator: {IsAdmin, ModerateContent},
	domain.RoleFinancialManager: {IsAdmin, ManageFinances},
}

// Capabilities inactive admins and unknown roles get an empty set.
func Capabilities(role domain.Role, active bool) Set {
	out := Set{}
	if !active {
		return out
	}
	for _, c := range grants[role] {
		out[c] = true
	}
	return out
}

// Of nil admin (no record) has no capabilities.
func Of(a *domain.Admin) Set {
	if a == nil {
		return Set{}
	}
	return Capabilities(a.Role, a.IsActive)
}
