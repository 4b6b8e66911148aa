package dto

import "github.com/qs3c/brand_go_server/internal/model"

// UpdateBrandConfigRequest 更新品牌基本信息
type UpdateBrandConfigRequest struct {
	CompanyName *string `json:"companyName" binding:"omitempty,min=1,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
}

// UpdateBrandAppConfigRequest 更新 App 外观配置
type UpdateBrandAppConfigRequest struct {
	AppName        *string `json:"appName" binding:"omitempty,max=100"`
	LogoURL        *string `json:"logoUrl" binding:"omitempty,url"`
	PrimaryColor   *string `json:"primaryColor" binding:"omitempty,max=20"`
	SecondaryColor *string `json:"secondaryColor" binding:"omitempty,max=20"`
	Typography     *string `json:"typography" binding:"omitempty,max=50"`
}

// AppConfigResponse 移动端 App 配置
type AppConfigResponse struct {
	Brand   AppConfigBrand     `json:"brand"`
	Plan    *AppConfigPlan     `json:"plan"`
	Modules model.PlanFeatures `json:"modules"`
}

type AppConfigBrand struct {
	ID             string  `json:"id"`
	CompanyName    string  `json:"companyName"`
	AppName        *string `json:"appName"`
	LogoURL        *string `json:"logoUrl"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	Typography     *string `json:"typography"`
}

type AppConfigPlan struct {
	Type     model.PlanType     `json:"type"`
	Name     string             `json:"name"`
	Features model.PlanFeatures `json:"features"`
}
