package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/internal/pkg/queue"
)

const popTimeout = 5 * time.Second

// JobSource 通知任务来源
type JobSource interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.NotificationJob, error)
}

// Pool 固定数量的 worker 从队列取任务
type Pool struct {
	source    JobSource
	processor *Processor
	workers   int
	timeout   time.Duration
	log       *zap.Logger
}

func NewPool(source JobSource, processor *Processor, workers int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{source: source, processor: processor, workers: workers, timeout: popTimeout, log: log}
}

// Run 阻塞直到 ctx 取消且所有 worker 退出
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) loop(ctx context.Context, workerID int) {
	log := p.log.With(zap.Int("worker", workerID))
	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			return
		default:
		}

		job, err := p.source.Pop(ctx, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("pop notification failed", zap.Error(err))
			// 队列不可用时稍等再试
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if job == nil {
			continue // 超时，继续等待
		}

		if err := p.processor.Process(ctx, job); err != nil {
			log.Error("notification failed",
				zap.String("kind", job.Kind),
				zap.String("brand_id", job.BrandID),
				zap.Error(err))
		}
	}
}
