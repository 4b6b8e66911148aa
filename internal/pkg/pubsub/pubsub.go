package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelBillingEvents = "billing_events"
)

// 计费消息类型
const (
	TypeSubscriptionActivated  = "subscription_activated"
	TypeSubscriptionSuperseded = "subscription_superseded"
	TypeSubscriptionCanceled   = "subscription_canceled"
)

// 消息类型对应的默认提示
var TypeMessages = map[string]string{
	TypeSubscriptionActivated:  "订阅已生效",
	TypeSubscriptionSuperseded: "订阅已被新套餐替换",
	TypeSubscriptionCanceled:   "订阅已取消",
}

// BillingMessage 订阅状态变更消息，按品牌推送到前端
type BillingMessage struct {
	Type           string `json:"type"`
	BrandID        string `json:"brand_id"`
	SubscriptionID string `json:"subscription_id"`
	PlanType       string `json:"plan_type,omitempty"`
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishBilling 发布订阅变更消息
func (p *Publisher) PublishBilling(ctx context.Context, msg *BillingMessage) error {
	if msg.Message == "" {
		if message, ok := TypeMessages[msg.Type]; ok {
			msg.Message = message
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal billing message: %w", err)
	}

	return p.client.Publish(ctx, ChannelBillingEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅计费消息，阻塞直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*BillingMessage)) error {
	ps := s.client.Subscribe(ctx, ChannelBillingEvents)
	defer ps.Close()

	// 等待订阅确认，保证返回前不会丢消息
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var billingMsg BillingMessage
			if err := json.Unmarshal([]byte(msg.Payload), &billingMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&billingMsg)
		}
	}
}
