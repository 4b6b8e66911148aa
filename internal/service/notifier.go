package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/internal/model"
	"github.com/qs3c/brand_go_server/internal/pkg/pubsub"
	"github.com/qs3c/brand_go_server/internal/pkg/queue"
	"github.com/qs3c/brand_go_server/internal/repository"
)

// JobQueue 通知任务队列
type JobQueue interface {
	Push(ctx context.Context, job *queue.NotificationJob) error
}

// RedisBillingNotifier 通过 Redis 发布实时消息并投递邮件任务
type RedisBillingNotifier struct {
	publisher *pubsub.Publisher
	jobs      JobQueue
	brandRepo *repository.BrandRepository
	log       *zap.Logger
}

func NewRedisBillingNotifier(
	publisher *pubsub.Publisher,
	jobs JobQueue,
	brandRepo *repository.BrandRepository,
	log *zap.Logger,
) *RedisBillingNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBillingNotifier{
		publisher: publisher,
		jobs:      jobs,
		brandRepo: brandRepo,
		log:       log,
	}
}

// SubscriptionActivated 新订阅生效
func (n *RedisBillingNotifier) SubscriptionActivated(ctx context.Context, sub *model.Subscription) error {
	pubErr := n.publish(ctx, pubsub.TypeSubscriptionActivated, sub)
	jobErr := n.enqueue(ctx, queue.KindSubscriptionActivated, sub)
	return errors.Join(pubErr, jobErr)
}

// SubscriptionSuperseded 旧订阅被新套餐替换，只推送实时消息
func (n *RedisBillingNotifier) SubscriptionSuperseded(ctx context.Context, sub *model.Subscription) error {
	return n.publish(ctx, pubsub.TypeSubscriptionSuperseded, sub)
}

// SubscriptionCanceled 订阅被取消
func (n *RedisBillingNotifier) SubscriptionCanceled(ctx context.Context, sub *model.Subscription) error {
	pubErr := n.publish(ctx, pubsub.TypeSubscriptionCanceled, sub)
	jobErr := n.enqueue(ctx, queue.KindSubscriptionCanceled, sub)
	return errors.Join(pubErr, jobErr)
}

func (n *RedisBillingNotifier) publish(ctx context.Context, msgType string, sub *model.Subscription) error {
	if n.publisher == nil {
		return nil
	}
	msg := &pubsub.BillingMessage{
		Type:           msgType,
		BrandID:        sub.BrandID,
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
	}
	if sub.Plan != nil {
		msg.PlanType = string(sub.Plan.Type)
	}
	if err := n.publisher.PublishBilling(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", msgType, err)
	}
	return nil
}

func (n *RedisBillingNotifier) enqueue(ctx context.Context, kind string, sub *model.Subscription) error {
	if n.jobs == nil {
		return nil
	}
	brand, err := n.brandRepo.GetBasic(sub.BrandID)
	if err != nil {
		return fmt.Errorf("load brand %s: %w", sub.BrandID, err)
	}

	job := &queue.NotificationJob{
		Kind:        kind,
		BrandID:     brand.ID,
		Email:       brand.Email,
		CompanyName: brand.CompanyName,
		Status:      string(sub.Status),
	}
	if sub.Plan != nil {
		job.PlanName = sub.Plan.Name
	}
	if err := n.jobs.Push(ctx, job); err != nil {
		return fmt.Errorf("enqueue %s: %w", kind, err)
	}
	return nil
}
