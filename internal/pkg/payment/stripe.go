package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// ErrInvalidPayload 签名通过但事件内容无法解析
var ErrInvalidPayload = errors.New("webhook payload invalid")

const defaultTimeout = 30 * time.Second

type StripeGateway struct {
	api           *client.API
	webhookSecret string
	log           *zap.Logger
}

type stripeOptions struct {
	backendURL string
	httpClient *http.Client
}

// Option StripeGateway 可选项
type Option func(*stripeOptions)

// WithBackendURL 指定 API 地址（测试或代理时使用）
func WithBackendURL(url string) Option {
	return func(o *stripeOptions) {
		o.backendURL = url
	}
}

// WithHTTPClient 指定 HTTP 客户端
func WithHTTPClient(c *http.Client) Option {
	return func(o *stripeOptions) {
		o.httpClient = c
	}
}

// NewStripeGateway 进程启动时创建一次，API 密钥或 webhook 签名密钥为空直接报错
func NewStripeGateway(secretKey, webhookSecret string, log *zap.Logger, opts ...Option) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, ErrMissingSecret
	}
	if webhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}
	if log == nil {
		log = zap.NewNop()
	}

	o := &stripeOptions{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}

	// 不自动重试，失败直接返回给调用方
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        o.httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     log.Named("stripe").Sugar(),
	}
	if o.backendURL != "" {
		backendCfg.URL = stripe.String(o.backendURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	return &StripeGateway{
		api: client.New(secretKey, &stripe.Backends{
			API:     backend,
			Connect: backend,
			Uploads: backend,
		}),
		webhookSecret: webhookSecret,
		log:           log,
	}, nil
}

// FindOrCreateCustomer 先按邮箱查找客户，不存在时创建
func (g *StripeGateway) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := g.api.Customers.List(params)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list customers: %s", upstreamMessage(err))
	}

	createParams := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	createParams.Context = ctx

	customer, err := g.api.Customers.New(createParams)
	if err != nil {
		return "", fmt.Errorf("create customer: %s", upstreamMessage(err))
	}
	return customer.ID, nil
}

// CreateCheckoutSession 创建单个订阅项的月付会话
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String(req.Currency),
		UnitAmount: stripe.Int64(req.Amount),
		Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(req.Interval),
		},
	}
	if req.ProductID != "" {
		priceData.Product = stripe.String(req.ProductID)
	} else {
		priceData.ProductData = &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(req.ProductName),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(req.CustomerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata:   req.Metadata,
	}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %s", upstreamMessage(err))
	}
	return toCheckoutSession(session), nil
}

func (g *StripeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %s", upstreamMessage(err))
	}
	return toCheckoutSession(session), nil
}

func (g *StripeGateway) RetrieveSubscription(ctx context.Context, subscriptionRef string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Get(subscriptionRef, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription: %s", upstreamMessage(err))
	}
	return toSubscription(sub), nil
}

// ListInvoices 最多返回 limit 条，不自动翻页
func (g *StripeGateway) ListInvoices(ctx context.Context, customerID string, limit int64) ([]Invoice, error) {
	params := &stripe.InvoiceListParams{Customer: stripe.String(customerID)}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)

	invoices := make([]Invoice, 0, limit)
	iter := g.api.Invoices.List(params)
	for int64(len(invoices)) < limit && iter.Next() {
		inv := iter.Invoice()
		invoices = append(invoices, Invoice{
			ID:         inv.ID,
			Number:     inv.Number,
			AmountDue:  inv.AmountDue,
			AmountPaid: inv.AmountPaid,
			Currency:   string(inv.Currency),
			Status:     string(inv.Status),
			HostedURL:  inv.HostedInvoiceURL,
			PDFURL:     inv.InvoicePDF,
			CreatedAt:  time.Unix(inv.Created, 0).UTC(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %s", upstreamMessage(err))
	}
	return invoices, nil
}

// ParseWebhook 校验 Stripe-Signature 并转换为本地事件类型
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return decodeEvent(&event)
}

func decodeEvent(event *stripe.Event) (Event, error) {
	var raw json.RawMessage
	if event.Data != nil {
		raw = event.Data.Raw
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return &CheckoutCompleted{ID: event.ID, Session: *toCheckoutSession(&session)}, nil

	case stripe.EventTypeInvoicePaymentSucceeded:
		var inv stripe.Invoice
		if err := json.Unmarshal(raw, &inv); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		e := &InvoicePaymentSucceeded{
			ID:         event.ID,
			InvoiceID:  inv.ID,
			AmountPaid: inv.AmountPaid,
			Currency:   string(inv.Currency),
		}
		if inv.Customer != nil {
			e.CustomerID = inv.Customer.ID
		}
		return e, nil

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return &SubscriptionCanceled{ID: event.ID, SubscriptionID: sub.ID}, nil

	default:
		return &UnknownEvent{ID: event.ID, Type: string(event.Type)}, nil
	}
}

func toCheckoutSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if s.Subscription != nil {
		out.SubscriptionRef = s.Subscription.ID
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}

func toSubscription(s *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:     s.ID,
		Status: MapStatus(s.Status),
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	// 计费周期在订阅项上
	if s.Items != nil && len(s.Items.Data) > 0 {
		item := s.Items.Data[0]
		out.PeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		out.PeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	}
	return out
}

// MapStatus 将 Stripe 订阅状态归并到本地四种状态
func MapStatus(status stripe.SubscriptionStatus) string {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return StatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusIncomplete:
		return StatusPastDue
	case stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusPaused:
		return StatusUnpaid
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return StatusCanceled
	default:
		return StatusPastDue
	}
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrTooOld)
}

// upstreamMessage 提取 Stripe 返回的错误描述
func upstreamMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
