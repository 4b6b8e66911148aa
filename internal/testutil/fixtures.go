package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/internal/model"
)

// TestBrand 创建测试品牌
func TestBrand(t *testing.T, db *gorm.DB, opts ...func(*model.Brand)) *model.Brand {
	t.Helper()

	suffix := uuid.NewString()[:8]
	brand := &model.Brand{
		CompanyName:  "Test Company " + suffix,
		Email:        fmt.Sprintf("brand_%s@example.com", suffix),
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Subdomain:    "testcompany" + suffix,
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(brand)
	}

	if err := db.Create(brand).Error; err != nil {
		t.Fatalf("Failed to create test brand: %v", err)
	}

	return brand
}

// WithCompanyName 设置公司名
func WithCompanyName(name string) func(*model.Brand) {
	return func(b *model.Brand) {
		b.CompanyName = name
	}
}

// WithBrandEmail 设置品牌邮箱
func WithBrandEmail(email string) func(*model.Brand) {
	return func(b *model.Brand) {
		b.Email = email
	}
}

// WithSubdomain 设置子域名
func WithSubdomain(subdomain string) func(*model.Brand) {
	return func(b *model.Brand) {
		b.Subdomain = subdomain
	}
}

// TestPlan 创建测试套餐
func TestPlan(t *testing.T, db *gorm.DB, planType model.PlanType, price int64, opts ...func(*model.Plan)) *model.Plan {
	t.Helper()

	plan := &model.Plan{
		Type:            planType,
		Name:            string(planType) + " plan",
		Price:           decimal.NewFromInt(price),
		StripeProductID: "prod_" + string(planType),
		Features: datatypes.NewJSONType(model.PlanFeatures{
			Ambassador: []string{"Offer consultation"},
			Brand:      []string{"Offer creation"},
		}),
		IsActive: true,
	}

	for _, opt := range opts {
		opt(plan)
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	return plan
}

// WithFeatures 设置套餐功能
func WithFeatures(features model.PlanFeatures) func(*model.Plan) {
	return func(p *model.Plan) {
		p.Features = datatypes.NewJSONType(features)
	}
}

// WithPlanActive 设置套餐是否上架
func WithPlanActive(active bool) func(*model.Plan) {
	return func(p *model.Plan) {
		p.IsActive = active
	}
}

// TestSubscription 创建测试订阅
func TestSubscription(t *testing.T, db *gorm.DB, brandID, planID string, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	sub := &model.Subscription{
		BrandID:              brandID,
		PlanID:               planID,
		StripeSubscriptionID: "sub_" + uuid.NewString()[:12],
		StripeCustomerID:     "cus_test",
		Status:               model.SubscriptionStatusActive,
		CurrentPeriodStart:   now,
		CurrentPeriodEnd:     now.AddDate(0, 1, 0),
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithSubscriptionStatus 设置订阅状态
func WithSubscriptionStatus(status model.SubscriptionStatus) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
	}
}

// WithStripeSubscriptionID 设置外部订阅 ID
func WithStripeSubscriptionID(id string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.StripeSubscriptionID = id
	}
}

// WithStripeCustomerID 设置外部客户 ID
func WithStripeCustomerID(id string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.StripeCustomerID = id
	}
}

// WithPeriod 设置计费周期
func WithPeriod(start, end time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.CurrentPeriodStart = start
		s.CurrentPeriodEnd = end
	}
}

// TestOffer 创建测试优惠活动
func TestOffer(t *testing.T, db *gorm.DB, brandID string, title string) *model.Offer {
	t.Helper()

	offer := &model.Offer{
		Title:       title,
		Description: "Description of " + title,
		IsActive:    true,
		BrandID:     brandID,
	}

	if err := db.Create(offer).Error; err != nil {
		t.Fatalf("Failed to create test offer: %v", err)
	}

	return offer
}
