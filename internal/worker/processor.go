package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/internal/pkg/email"
	"github.com/qs3c/brand_go_server/internal/pkg/queue"
)

// Processor 通知任务处理器，把队列任务转换为邮件
type Processor struct {
	sender email.Sender
	log    *zap.Logger
}

// NewProcessor 创建任务处理器
func NewProcessor(sender email.Sender, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{sender: sender, log: log}
}

// Process 处理单个通知任务，未知类型直接丢弃
func (p *Processor) Process(ctx context.Context, job *queue.NotificationJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if job.Email == "" {
		return fmt.Errorf("job %s for brand %s has no recipient", job.Kind, job.BrandID)
	}

	var err error
	switch job.Kind {
	case queue.KindWelcome:
		err = p.sender.SendWelcome(job.Email, job.CompanyName)
	case queue.KindSubscriptionActivated:
		err = p.sender.SendSubscriptionActivated(job.Email, job.CompanyName, job.PlanName)
	case queue.KindSubscriptionCanceled:
		err = p.sender.SendSubscriptionCanceled(job.Email, job.CompanyName, job.PlanName)
	default:
		p.log.Warn("unknown notification kind", zap.String("kind", job.Kind), zap.String("brand_id", job.BrandID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("send %s email: %w", job.Kind, err)
	}

	p.log.Info("notification sent",
		zap.String("kind", job.Kind),
		zap.String("brand_id", job.BrandID))
	return nil
}
