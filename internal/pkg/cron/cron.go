package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/internal/model/dto"
)

const defaultInterval = time.Hour

// Refresher 周期性同步订阅状态
type Refresher interface {
	RefreshStale(ctx context.Context) (*dto.RefreshResult, error)
}

type Service struct {
	refresher Refresher
	interval  time.Duration
	log       *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewService(refresher Refresher, interval time.Duration, log *zap.Logger) *Service {
	if interval <= 0 {
		interval = defaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		refresher: refresher,
		interval:  interval,
		log:       log,
		stopChan:  make(chan struct{}),
	}
}

// Start 启动定时同步
func (s *Service) Start() {
	s.wg.Add(1)
	go s.runReconcile()
	s.log.Info("cron service started", zap.Duration("interval", s.interval))
}

// Stop 停止定时任务并等待正在执行的同步结束
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.log.Info("cron service stopped")
}

func (s *Service) runReconcile() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := s.runContext()
			if _, err := s.RunNow(ctx); err != nil {
				s.log.Error("reconcile subscriptions failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// runContext 停止时取消正在进行的同步
func (s *Service) runContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// RunNow 立即执行一次同步（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) (*dto.RefreshResult, error) {
	if s.refresher == nil {
		return &dto.RefreshResult{}, nil
	}

	result, err := s.refresher.RefreshStale(ctx)
	if err != nil {
		return result, err
	}

	if result.Checked > 0 {
		s.log.Info("subscriptions reconciled",
			zap.Int("checked", result.Checked),
			zap.Int("updated", result.Updated),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}
