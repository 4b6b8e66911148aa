package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/brand_go_server/internal/pkg/queue"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendWelcome(to, companyName string) error {
	return m.Called(to, companyName).Error(0)
}

func (m *mockSender) SendSubscriptionActivated(to, companyName, planName string) error {
	return m.Called(to, companyName, planName).Error(0)
}

func (m *mockSender) SendSubscriptionCanceled(to, companyName, planName string) error {
	return m.Called(to, companyName, planName).Error(0)
}

func TestProcessor_Process(t *testing.T) {
	tests := []struct {
		name  string
		job   *queue.NotificationJob
		setup func(m *mockSender)
	}{
		{
			name: "welcome",
			job:  &queue.NotificationJob{Kind: queue.KindWelcome, BrandID: "b1", Email: "a@example.com", CompanyName: "Acme"},
			setup: func(m *mockSender) {
				m.On("SendWelcome", "a@example.com", "Acme").Return(nil)
			},
		},
		{
			name: "activated",
			job:  &queue.NotificationJob{Kind: queue.KindSubscriptionActivated, BrandID: "b1", Email: "a@example.com", CompanyName: "Acme", PlanName: "Pro"},
			setup: func(m *mockSender) {
				m.On("SendSubscriptionActivated", "a@example.com", "Acme", "Pro").Return(nil)
			},
		},
		{
			name: "canceled",
			job:  &queue.NotificationJob{Kind: queue.KindSubscriptionCanceled, BrandID: "b1", Email: "a@example.com", CompanyName: "Acme", PlanName: "Pro"},
			setup: func(m *mockSender) {
				m.On("SendSubscriptionCanceled", "a@example.com", "Acme", "Pro").Return(nil)
			},
		},
		{
			name:  "unknown kind is dropped",
			job:   &queue.NotificationJob{Kind: "newsletter", BrandID: "b1", Email: "a@example.com"},
			setup: func(m *mockSender) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &mockSender{}
			tt.setup(sender)

			p := NewProcessor(sender, nil)
			require.NoError(t, p.Process(context.Background(), tt.job))
			sender.AssertExpectations(t)
		})
	}
}

func TestProcessor_Process_SendError(t *testing.T) {
	sender := &mockSender{}
	sendErr := errors.New("smtp down")
	sender.On("SendWelcome", "a@example.com", "Acme").Return(sendErr)

	p := NewProcessor(sender, nil)
	err := p.Process(context.Background(), &queue.NotificationJob{Kind: queue.KindWelcome, Email: "a@example.com", CompanyName: "Acme"})
	assert.ErrorIs(t, err, sendErr)
}

func TestProcessor_Process_NoRecipient(t *testing.T) {
	p := NewProcessor(&mockSender{}, nil)
	err := p.Process(context.Background(), &queue.NotificationJob{Kind: queue.KindWelcome, BrandID: "b1"})
	assert.Error(t, err)
}

func TestProcessor_Process_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(&mockSender{}, nil)
	err := p.Process(ctx, &queue.NotificationJob{Kind: queue.KindWelcome, Email: "a@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
