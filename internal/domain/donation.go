package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation 创建后不可修改，只能删除（删除需冲回余额）
type Donation struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	DonorID    string          `gorm:"size:36;not null;index" json:"-"`
	CampaignID string          `gorm:"size:36;not null;index" json:"campaignId"`
	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	DonatedAt  time.Time       `gorm:"index" json:"donatedAt"`
	Donor      *Donor          `gorm:"foreignKey:DonorID" json:"-"`
	Campaign   *Campaign       `gorm:"foreignKey:CampaignID" json:"-"`
}

func (Donation) TableName() string { return "donations" }
