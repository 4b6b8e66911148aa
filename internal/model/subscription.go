package model

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid   SubscriptionStatus = "unpaid"
)

// Valid 是否为已知状态
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusCanceled, SubscriptionStatusPastDue, SubscriptionStatusUnpaid:
		return true
	}
	return false
}

// Subscription 品牌方与套餐之间的一次计费关系，stripe_subscription_id 唯一
type Subscription struct {
	ID                   string             `gorm:"type:char(36);primaryKey" json:"id"`
	BrandID              string             `gorm:"type:char(36);not null;index:idx_subscriptions_brand_status" json:"brandId"`
	PlanID               string             `gorm:"type:char(36);not null;index" json:"planId"`
	StripeSubscriptionID string             `gorm:"size:100;uniqueIndex;not null" json:"stripeSubscriptionId"`
	StripeCustomerID     string             `gorm:"size:100;index" json:"stripeCustomerId"`
	Status               SubscriptionStatus `gorm:"size:20;not null;default:active;index:idx_subscriptions_brand_status" json:"status"`
	CurrentPeriodStart   time.Time          `json:"currentPeriodStart"`
	CurrentPeriodEnd     time.Time          `gorm:"index" json:"currentPeriodEnd"`
	Plan                 *Plan              `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// CanTransitionTo canceled 为终态，其余状态之间按网关同步
func (s *Subscription) CanTransitionTo(next SubscriptionStatus) bool {
	if !next.Valid() {
		return false
	}
	return s.Status != SubscriptionStatusCanceled
}
