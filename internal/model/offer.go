package model

import (
	"time"

	"gorm.io/gorm"
)

// Offer 品牌方发布给推广大使的优惠活动
type Offer struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	ExternalLink *string   `gorm:"size:500" json:"externalLink"`
	IsActive     bool      `gorm:"not null" json:"isActive"`
	BrandID      string    `gorm:"type:char(36);not null;index" json:"brandId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Offer) TableName() string {
	return "offers"
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
