package domain

import "time"

type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleCampaignManager  Role = "campaign_manager"
	RoleContentModerator Role = "content_moderator"
	RoleFinancialManager Role = "financial_manager"
)

var roleDisplay = map[Role]string{
	RoleSuperAdmin:       "Super Admin",
	RoleCampaignManager:  "Campaign Manager",
	RoleContentModerator: "Content Moderator",
	RoleFinancialManager: "Financial Manager",
}

func (r Role) Valid() bool {
	_, ok := roleDisplay[r]
	return ok
}

func (r Role) Display() string { return roleDisplay[r] }

// Roles 所有合法角色
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleCampaignManager, RoleContentModerator, RoleFinancialManager}
}

// Admin 与 User 一对一；IsActive=false 时撤销全部后台能力
type Admin struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"uniqueIndex;size:36;not null" json:"-"`
	Role      Role      `gorm:"size:50;not null;default:campaign_manager" json:"role"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Admin) TableName() string { return "admins" }
