package model

import (
	"time"

	"gorm.io/gorm"
)

// Brand 租户（品牌方）
type Brand struct {
	ID             string         `gorm:"type:char(36);primaryKey" json:"id"`
	CompanyName    string         `gorm:"size:100;uniqueIndex;not null" json:"companyName"`
	Email          string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash   string         `gorm:"size:255;not null" json:"-"`
	AppName        *string        `gorm:"size:100" json:"appName"`
	LogoURL        *string        `gorm:"size:500" json:"logoUrl"`
	PrimaryColor   *string        `gorm:"size:20" json:"primaryColor"`
	SecondaryColor *string        `gorm:"size:20" json:"secondaryColor"`
	Typography     *string        `gorm:"size:50" json:"typography"`
	Subdomain      string         `gorm:"size:50;uniqueIndex;not null" json:"subdomain"`
	IsActive       bool           `gorm:"not null" json:"isActive"`
	Offers         []Offer        `gorm:"foreignKey:BrandID" json:"offers,omitempty"`
	Subscriptions  []Subscription `gorm:"foreignKey:BrandID" json:"subscriptions,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (Brand) TableName() string {
	return "brands"
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// ActiveSubscription 返回当前生效的订阅
func (b *Brand) ActiveSubscription() *Subscription {
	for i := range b.Subscriptions {
		if b.Subscriptions[i].Status == SubscriptionStatusActive {
			return &b.Subscriptions[i]
		}
	}
	return nil
}
