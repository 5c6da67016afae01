package domain

import "time"

// User 登录主体；对外只通过 Donor / Admin 派生视图暴露
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FirstName    string     `gorm:"size:150" json:"firstName"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	LastLoginAt  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Donor 与 User 一对一
type Donor struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"uniqueIndex;size:36;not null" json:"-"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Donor) TableName() string { return "donors" }

// Models 参与自动迁移的全部模型（顺序即建表顺序）
func Models() []any {
	return []any{&User{}, &Donor{}, &Admin{}, &Campaign{}, &Donation{}, &Comment{}}
}
