package domain

import "time"

type Comment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	CampaignID string    `gorm:"size:36;not null;index" json:"campaignId"`
	DonorID    string    `gorm:"size:36;not null;index" json:"-"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	Donor      *Donor    `gorm:"foreignKey:DonorID" json:"-"`
}

func (Comment) TableName() string { return "comments" }
