package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlanType string

const (
	PlanTypeStarter    PlanType = "starter"
	PlanTypePro        PlanType = "pro"
	PlanTypeEnterprise PlanType = "enterprise"
)

// 功能所属角色
const (
	FeatureRoleBrand      = "brand"
	FeatureRoleAmbassador = "ambassador"
)

// PlanFeatures 套餐开放的功能模块，分品牌方和推广大使两个列表
type PlanFeatures struct {
	Ambassador []string `json:"ambassador"`
	Brand      []string `json:"brand"`
}

// Has 判断某个角色是否拥有指定功能
func (f PlanFeatures) Has(role, feature string) bool {
	var list []string
	switch role {
	case FeatureRoleBrand:
		list = f.Brand
	case FeatureRoleAmbassador:
		list = f.Ambassador
	}
	for _, item := range list {
		if item == feature {
			return true
		}
	}
	return false
}

// EmptyFeatures 无套餐时的功能集合（两个空列表，保持结构稳定）
func EmptyFeatures() PlanFeatures {
	return PlanFeatures{Ambassador: []string{}, Brand: []string{}}
}

type Plan struct {
	ID              string                          `gorm:"type:char(36);primaryKey" json:"id"`
	Type            PlanType                        `gorm:"size:20;uniqueIndex;not null" json:"type"`
	Name            string                          `gorm:"size:50;not null" json:"name"`
	Price           decimal.Decimal                 `gorm:"type:decimal(10,2);not null" json:"price"`
	StripeProductID string                          `gorm:"size:100" json:"stripeProductId,omitempty"`
	Features        datatypes.JSONType[PlanFeatures] `json:"features"`
	IsActive        bool                            `gorm:"not null" json:"isActive"`
	CreatedAt       time.Time                       `json:"createdAt"`
	UpdatedAt       time.Time                       `json:"updatedAt"`
}

func (Plan) TableName() string {
	return "plans"
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// MinorUnitAmount 价格转换为最小货币单位（分）
func (p *Plan) MinorUnitAmount() int64 {
	return p.Price.Shift(2).Round(0).IntPart()
}
