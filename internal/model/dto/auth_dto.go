package dto

import "github.com/qs3c/brand_go_server/internal/model"

// RegisterRequest 品牌方注册请求
type RegisterRequest struct {
	CompanyName    string  `json:"companyName" binding:"required,max=100"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=6,max=72"`
	FirstName      *string `json:"firstName" binding:"omitempty,max=50"`
	LastName       *string `json:"lastName" binding:"omitempty,max=50"`
	AppName        *string `json:"appName" binding:"omitempty,max=100"`
	LogoURL        *string `json:"logoUrl" binding:"omitempty,url"`
	PrimaryColor   *string `json:"primaryColor" binding:"omitempty,max=20"`
	SecondaryColor *string `json:"secondaryColor" binding:"omitempty,max=20"`
	Typography     *string `json:"typography" binding:"omitempty,max=50"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	User        *UserInfo `json:"user"`
}

// UserInfo 登录账号信息（返回给前端）
type UserInfo struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	FirstName *string      `json:"firstName,omitempty"`
	LastName  *string      `json:"lastName,omitempty"`
	Brand     *model.Brand `json:"brand"`
}
