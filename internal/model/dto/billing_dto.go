package dto

import "github.com/qs3c/brand_go_server/internal/model"

// CreateCheckoutSessionRequest 创建支付会话
type CreateCheckoutSessionRequest struct {
	BrandID string `json:"brandId" binding:"required"`
	PlanID  string `json:"planId" binding:"required"`
}

// CheckoutSessionResponse 支付会话，前端跳转到 URL 完成支付
type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// WebhookAck Webhook 回执
type WebhookAck struct {
	Received bool `json:"received"`
}

// VerifySessionResponse 会话校验结果，未支付等情况 Success 为 false 而非错误
type VerifySessionResponse struct {
	Success      bool                `json:"success"`
	Subscription *model.Subscription `json:"subscription,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// InvoiceInfo 账单信息
type InvoiceInfo struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	AmountDue  int64  `json:"amountDue"`
	AmountPaid int64  `json:"amountPaid"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	HostedURL  string `json:"hostedUrl,omitempty"`
	PDFURL     string `json:"pdfUrl,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// RefreshResult 订阅同步结果
type RefreshResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
