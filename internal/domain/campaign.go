package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryHealth    Category = "Health"
	CategoryEducation Category = "Education"
	CategoryWater     Category = "Water"
	CategoryFood      Category = "Food"
	CategoryEmergency Category = "Emergency"
)

const (
	DefaultCategory = CategoryHealth
	DefaultLocation = "Nairobi"
)

func Categories() []Category {
	return []Category{CategoryHealth, CategoryEducation, CategoryWater, CategoryFood, CategoryEmergency}
}

func (c Category) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// Campaign AmountRaised 是缓存值，只能由 ledger 修改
type Campaign struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	Title        string          `gorm:"size:255;not null" json:"title"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Goal         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"goal"`
	AmountRaised decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amountRaised"`
	Category     Category        `gorm:"size:50;not null;index" json:"category"`
	Location     string          `gorm:"size:100;not null;index" json:"location"`
	IsActive     bool            `gorm:"not null" json:"isActive"`
	Featured     bool            `gorm:"not null;default:false" json:"featured"`
	CreatedByID  *string         `gorm:"size:36;index" json:"createdBy"`
	CreatedBy    *User           `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt    time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (Campaign) TableName() string { return "campaigns" }
