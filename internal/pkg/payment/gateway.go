// Package payment 封装外部支付网关（Stripe）的调用
package payment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	ErrMissingSecret    = errors.New("stripe secret key is not configured")
)

// ErrMissingWebhookSecret 签名密钥为空时无法校验事件来源
var ErrMissingWebhookSecret = errors.New("stripe webhook secret is not configured")

// 订阅状态（与本地模型一致）
const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusPastDue  = "past_due"
	StatusUnpaid   = "unpaid"
)

// PaymentStatusPaid 会话已完成支付
const PaymentStatusPaid = "paid"

// CheckoutRequest 创建支付会话参数
type CheckoutRequest struct {
	CustomerID  string
	ProductID   string
	ProductName string
	Amount      int64 // 最小货币单位
	Currency    string
	Interval    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession 支付会话
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string
	SubscriptionRef string
	CustomerID      string
	Metadata        map[string]string
}

// Subscription 网关侧订阅
type Subscription struct {
	ID          string
	CustomerID  string
	Status      string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Invoice 账单
type Invoice struct {
	ID         string
	Number     string
	AmountDue  int64
	AmountPaid int64
	Currency   string
	Status     string
	HostedURL  string
	PDFURL     string
	CreatedAt  time.Time
}

// Gateway 支付网关
type Gateway interface {
	FindOrCreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	RetrieveSubscription(ctx context.Context, subscriptionRef string) (*Subscription, error)
	ListInvoices(ctx context.Context, customerID string, limit int64) ([]Invoice, error)
	// ParseWebhook 校验签名并解析事件，签名无效返回 ErrSignatureInvalid
	ParseWebhook(payload []byte, signature string) (Event, error)
}
