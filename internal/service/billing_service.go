package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/model"
	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/pkg/payment"
	"github.com/qs3c/brand_go_server/internal/repository"
)

var (
	ErrBrandNotFound    = errors.New("品牌不存在")
	ErrGatewayFailure   = errors.New("支付服务调用失败")
	ErrMissingMetadata  = errors.New("支付会话缺少 brandId 或 planId")
	ErrInvalidSignature = errors.New("webhook 签名无效")
	ErrInvalidEvent     = errors.New("webhook 事件无法解析")
)

const (
	metadataBrandID = "brandId"
	metadataPlanID  = "planId"

	defaultCurrency     = "eur"
	defaultInvoiceLimit = 10
	billingInterval     = "month"
	refreshBatchSize    = 100
)

// EventLedger 已处理 webhook 事件记录
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) (bool, error)
}

// BillingNotifier 订阅状态变更通知，失败只记录日志
type BillingNotifier interface {
	SubscriptionActivated(ctx context.Context, sub *model.Subscription) error
	SubscriptionSuperseded(ctx context.Context, sub *model.Subscription) error
	SubscriptionCanceled(ctx context.Context, sub *model.Subscription) error
}

type BillingService struct {
	brandRepo *repository.BrandRepository
	planRepo  *repository.PlanRepository
	subRepo   *repository.SubscriptionRepository
	gateway   payment.Gateway
	ledger    EventLedger
	notifier  BillingNotifier
	cfg       *config.Config
	log       *zap.Logger
	now       func() time.Time
}

func NewBillingService(
	brandRepo *repository.BrandRepository,
	planRepo *repository.PlanRepository,
	subRepo *repository.SubscriptionRepository,
	gateway payment.Gateway,
	cfg *config.Config,
	log *zap.Logger,
) *BillingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BillingService{
		brandRepo: brandRepo,
		planRepo:  planRepo,
		subRepo:   subRepo,
		gateway:   gateway,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// SetEventLedger 启用 webhook 事件去重，需在处理请求前调用
func (s *BillingService) SetEventLedger(ledger EventLedger) {
	s.ledger = ledger
}

// SetNotifier 启用订阅变更通知，需在处理请求前调用
func (s *BillingService) SetNotifier(notifier BillingNotifier) {
	s.notifier = notifier
}

// CreateCheckoutSession 创建月付订阅的支付会话
func (s *BillingService) CreateCheckoutSession(ctx context.Context, req *dto.CreateCheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	brand, err := s.getBrand(req.BrandID)
	if err != nil {
		return nil, err
	}
	plan, err := s.getPlan(req.PlanID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.gateway.FindOrCreateCustomer(ctx, brand.Email, brand.CompanyName)
	if err != nil {
		return nil, gatewayError(err)
	}

	frontendURL := strings.TrimRight(s.cfg.Stripe.FrontendURL, "/")
	session, err := s.gateway.CreateCheckoutSession(ctx, &payment.CheckoutRequest{
		CustomerID:  customerID,
		ProductID:   plan.StripeProductID,
		ProductName: plan.Name,
		Amount:      plan.MinorUnitAmount(),
		Currency:    s.currency(),
		Interval:    billingInterval,
		SuccessURL:  frontendURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   frontendURL + "/plans",
		Metadata: map[string]string{
			metadataBrandID: brand.ID,
			metadataPlanID:  plan.ID,
		},
	})
	if err != nil {
		return nil, gatewayError(err)
	}

	s.log.Info("checkout session created",
		zap.String("brand_id", brand.ID),
		zap.String("plan_id", plan.ID),
		zap.String("session_id", session.ID))

	return &dto.CheckoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// HandleWebhook 校验签名后按事件类型处理，处理成功才记录事件 ID
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookAck, error) {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	log := s.log.With(zap.String("event_id", event.EventID()))
	if s.alreadyProcessed(ctx, event.EventID()) {
		log.Debug("webhook event already processed")
		return &dto.WebhookAck{Received: true}, nil
	}

	switch e := event.(type) {
	case *payment.CheckoutCompleted:
		err = s.handleCheckoutCompleted(ctx, e)
	case *payment.InvoicePaymentSucceeded:
		log.Info("invoice payment succeeded",
			zap.String("invoice_id", e.InvoiceID),
			zap.String("customer_id", e.CustomerID),
			zap.Int64("amount_paid", e.AmountPaid),
			zap.String("currency", e.Currency))
	case *payment.SubscriptionCanceled:
		err = s.cancel(ctx, e.SubscriptionID)
	case *payment.UnknownEvent:
		log.Debug("webhook event ignored", zap.String("type", e.Type))
	}
	if err != nil {
		return nil, err
	}

	s.markProcessed(ctx, event.EventID())
	return &dto.WebhookAck{Received: true}, nil
}

func (s *BillingService) handleCheckoutCompleted(ctx context.Context, e *payment.CheckoutCompleted) error {
	brandID, planID := e.Session.Metadata[metadataBrandID], e.Session.Metadata[metadataPlanID]
	if brandID == "" || planID == "" {
		return fmt.Errorf("%w: session %s", ErrMissingMetadata, e.Session.ID)
	}
	if e.Session.SubscriptionRef == "" {
		return fmt.Errorf("%w: session %s has no subscription", ErrMissingMetadata, e.Session.ID)
	}

	_, err := s.materialize(ctx, brandID, planID, e.Session.SubscriptionRef)
	return err
}

// VerifySession 前端跳转回来后主动确认支付结果，与 webhook 收敛到同一条订阅
func (s *BillingService) VerifySession(ctx context.Context, sessionID string) (*dto.VerifySessionResponse, error) {
	session, err := s.gateway.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, gatewayError(err)
	}

	if session.PaymentStatus != payment.PaymentStatusPaid {
		return &dto.VerifySessionResponse{Success: false, Message: "支付尚未完成"}, nil
	}
	brandID, planID := session.Metadata[metadataBrandID], session.Metadata[metadataPlanID]
	if brandID == "" || planID == "" {
		return &dto.VerifySessionResponse{Success: false, Message: "支付会话缺少品牌或套餐信息"}, nil
	}
	if session.SubscriptionRef == "" {
		return &dto.VerifySessionResponse{Success: false, Message: "支付会话未关联订阅"}, nil
	}

	sub, err := s.materialize(ctx, brandID, planID, session.SubscriptionRef)
	if err != nil {
		return nil, err
	}
	return &dto.VerifySessionResponse{Success: true, Subscription: sub}, nil
}

// materialize 幂等地写入订阅：先按外部 ID 查、再查 (brand, plan) 有效订阅，
// 都没有时向网关读取订阅并以唯一约束兜底写入
func (s *BillingService) materialize(ctx context.Context, brandID, planID, subscriptionRef string) (*model.Subscription, error) {
	log := s.log.With(
		zap.String("brand_id", brandID),
		zap.String("plan_id", planID),
		zap.String("stripe_subscription_id", subscriptionRef))

	existing, err := s.subRepo.GetByStripeID(subscriptionRef)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	existing, err = s.subRepo.FindActive(brandID, planID)
	if err == nil {
		log.Info("active subscription already exists", zap.String("subscription_id", existing.ID))
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.getBrand(brandID); err != nil {
		return nil, err
	}
	if _, err := s.getPlan(planID); err != nil {
		return nil, err
	}

	remote, err := s.gateway.RetrieveSubscription(ctx, subscriptionRef)
	if err != nil {
		return nil, gatewayError(err)
	}

	stripeID := remote.ID
	if stripeID == "" {
		stripeID = subscriptionRef
	}
	result, err := s.subRepo.CreateIfAbsent(&model.Subscription{
		BrandID:              brandID,
		PlanID:               planID,
		StripeSubscriptionID: stripeID,
		StripeCustomerID:     remote.CustomerID,
		Status:               model.SubscriptionStatus(remote.Status),
		CurrentPeriodStart:   remote.PeriodStart,
		CurrentPeriodEnd:     remote.PeriodEnd,
	})
	if err != nil {
		return nil, err
	}

	if !result.Created {
		log.Info("subscription materialized concurrently", zap.String("subscription_id", result.Subscription.ID))
		return result.Subscription, nil
	}

	log.Info("subscription materialized",
		zap.String("subscription_id", result.Subscription.ID),
		zap.String("status", string(result.Subscription.Status)),
		zap.Int("superseded", len(result.Superseded)))

	if result.Subscription.Status == model.SubscriptionStatusActive {
		s.notify(ctx, notifyActivated, result.Subscription)
	}
	for i := range result.Superseded {
		s.notify(ctx, notifySuperseded, &result.Superseded[i])
	}
	return result.Subscription, nil
}

// cancel 取消订阅，未知订阅或已取消时不做任何事
func (s *BillingService) cancel(ctx context.Context, stripeSubscriptionID string) error {
	changed, err := s.subRepo.UpdateStatus(stripeSubscriptionID, model.SubscriptionStatusCanceled)
	if err != nil {
		return err
	}
	if !changed {
		s.log.Debug("cancellation is a no-op", zap.String("stripe_subscription_id", stripeSubscriptionID))
		return nil
	}

	sub, err := s.subRepo.GetByStripeID(stripeSubscriptionID)
	if err != nil {
		return err
	}
	s.log.Info("subscription canceled",
		zap.String("subscription_id", sub.ID),
		zap.String("brand_id", sub.BrandID))

	s.notify(ctx, notifyCanceled, sub)
	return nil
}

// ListInvoices 品牌最近一次订阅对应客户的账单
func (s *BillingService) ListInvoices(ctx context.Context, brandID string) ([]dto.InvoiceInfo, error) {
	if _, err := s.getBrand(brandID); err != nil {
		return nil, err
	}

	sub, err := s.subRepo.FindLatestByBrand(brandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.InvoiceInfo{}, nil
		}
		return nil, err
	}
	if sub.StripeCustomerID == "" {
		return []dto.InvoiceInfo{}, nil
	}

	limit := s.cfg.Stripe.InvoiceLimit
	if limit <= 0 {
		limit = defaultInvoiceLimit
	}
	invoices, err := s.gateway.ListInvoices(ctx, sub.StripeCustomerID, limit)
	if err != nil {
		return nil, gatewayError(err)
	}

	items := make([]dto.InvoiceInfo, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, dto.InvoiceInfo{
			ID:         inv.ID,
			Number:     inv.Number,
			AmountDue:  inv.AmountDue,
			AmountPaid: inv.AmountPaid,
			Currency:   inv.Currency,
			Status:     inv.Status,
			HostedURL:  inv.HostedURL,
			PDFURL:     inv.PDFURL,
			CreatedAt:  inv.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

// RefreshStale 重新读取计费周期已结束的订阅，同步状态与周期
func (s *BillingService) RefreshStale(ctx context.Context) (*dto.RefreshResult, error) {
	subs, err := s.subRepo.ListStale(s.now().UTC(), refreshBatchSize)
	if err != nil {
		return nil, err
	}

	result := &dto.RefreshResult{}
	for i := range subs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sub := &subs[i]
		result.Checked++

		remote, err := s.gateway.RetrieveSubscription(ctx, sub.StripeSubscriptionID)
		if err != nil {
			result.Failed++
			s.log.Warn("refresh subscription failed",
				zap.String("subscription_id", sub.ID),
				zap.Error(err))
			continue
		}

		status := model.SubscriptionStatus(remote.Status)
		if status == sub.Status &&
			remote.PeriodStart.Equal(sub.CurrentPeriodStart) &&
			remote.PeriodEnd.Equal(sub.CurrentPeriodEnd) {
			continue
		}

		synced, err := s.subRepo.UpdateFromGateway(sub.ID, status, remote.PeriodStart, remote.PeriodEnd)
		if err != nil {
			result.Failed++
			s.log.Warn("update subscription failed", zap.String("subscription_id", sub.ID), zap.Error(err))
			continue
		}
		if !synced.Changed {
			continue
		}
		result.Updated++

		for i := range synced.Superseded {
			s.log.Info("subscription superseded",
				zap.String("subscription_id", synced.Superseded[i].ID),
				zap.String("by", sub.ID))
			s.notify(ctx, notifySuperseded, &synced.Superseded[i])
		}
		if status == model.SubscriptionStatusCanceled {
			sub.Status = status
			s.notify(ctx, notifyCanceled, sub)
		}
	}

	s.log.Info("stale subscriptions refreshed",
		zap.Int("checked", result.Checked),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *BillingService) getBrand(id string) (*model.Brand, error) {
	brand, err := s.brandRepo.GetBasic(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return brand, nil
}

func (s *BillingService) getPlan(id string) (*model.Plan, error) {
	plan, err := s.planRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *BillingService) currency() string {
	if s.cfg.Stripe.Currency == "" {
		return defaultCurrency
	}
	return strings.ToLower(s.cfg.Stripe.Currency)
}

// alreadyProcessed Redis 不可用时按未处理继续，由唯一约束兜底
func (s *BillingService) alreadyProcessed(ctx context.Context, eventID string) bool {
	if s.ledger == nil {
		return false
	}
	seen, err := s.ledger.Seen(ctx, eventID)
	if err != nil {
		s.log.Warn("event ledger unavailable", zap.Error(err))
		return false
	}
	return seen
}

func (s *BillingService) markProcessed(ctx context.Context, eventID string) {
	if s.ledger == nil {
		return
	}
	if _, err := s.ledger.Mark(ctx, eventID); err != nil {
		s.log.Warn("mark webhook event failed", zap.String("event_id", eventID), zap.Error(err))
	}
}

type notifyKind string

const (
	notifyActivated  notifyKind = "activated"
	notifySuperseded notifyKind = "superseded"
	notifyCanceled   notifyKind = "canceled"
)

// notify 通知失败不影响计费流程
func (s *BillingService) notify(ctx context.Context, kind notifyKind, sub *model.Subscription) {
	if s.notifier == nil {
		return
	}

	var err error
	switch kind {
	case notifyActivated:
		err = s.notifier.SubscriptionActivated(ctx, sub)
	case notifySuperseded:
		err = s.notifier.SubscriptionSuperseded(ctx, sub)
	case notifyCanceled:
		err = s.notifier.SubscriptionCanceled(ctx, sub)
	}
	if err != nil {
		s.log.Warn("billing notification failed",
			zap.String("kind", string(kind)),
			zap.String("subscription_id", sub.ID),
			zap.Error(err))
	}
}

func gatewayError(err error) error {
	return fmt.Errorf("%w: %s", ErrGatewayFailure, err.Error())
}
