package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/qs3c/brand_go_server/internal/model"
	"github.com/qs3c/brand_go_server/internal/pkg/payment"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	args := m.Called(ctx, email, name)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req *payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if s := args.Get(0); s != nil {
		return s.(*payment.CheckoutSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if s := args.Get(0); s != nil {
		return s.(*payment.CheckoutSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) RetrieveSubscription(ctx context.Context, ref string) (*payment.Subscription, error) {
	args := m.Called(ctx, ref)
	if s := args.Get(0); s != nil {
		return s.(*payment.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) ListInvoices(ctx context.Context, customerID string, limit int64) ([]payment.Invoice, error) {
	args := m.Called(ctx, customerID, limit)
	if s := args.Get(0); s != nil {
		return s.([]payment.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (payment.Event, error) {
	args := m.Called(payload, signature)
	if e := args.Get(0); e != nil {
		return e.(payment.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

// memoryLedger 内存版事件记录
type memoryLedger struct {
	seen map[string]bool
	err  error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{seen: make(map[string]bool)}
}

func (l *memoryLedger) Seen(_ context.Context, id string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return l.seen[id], nil
}

func (l *memoryLedger) Mark(_ context.Context, id string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.seen[id] {
		return false, nil
	}
	l.seen[id] = true
	return true, nil
}

// recordingNotifier 记录收到的通知
type recordingNotifier struct {
	activated  []string
	superseded []string
	canceled   []string
	// canceledPlans 取消通知中携带的套餐名
	canceledPlans []string
	err           error
}

func (n *recordingNotifier) SubscriptionActivated(_ context.Context, sub *model.Subscription) error {
	n.activated = append(n.activated, sub.StripeSubscriptionID)
	return n.err
}

func (n *recordingNotifier) SubscriptionSuperseded(_ context.Context, sub *model.Subscription) error {
	n.superseded = append(n.superseded, sub.StripeSubscriptionID)
	return n.err
}

func (n *recordingNotifier) SubscriptionCanceled(_ context.Context, sub *model.Subscription) error {
	n.canceled = append(n.canceled, sub.StripeSubscriptionID)
	if sub.Plan != nil {
		n.canceledPlans = append(n.canceledPlans, sub.Plan.Name)
	}
	return n.err
}
