package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/database"
	"github.com/qs3c/brand_go_server/internal/pkg/email"
	"github.com/qs3c/brand_go_server/internal/pkg/logger"
	"github.com/qs3c/brand_go_server/internal/pkg/queue"
	"github.com/qs3c/brand_go_server/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Log, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logr.Sync()

	// 邮件任务只依赖 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()
	logr.Info("redis connected")

	jobQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	processor := worker.NewProcessor(email.NewService(&cfg.Email), logr)
	pool := worker.NewPool(jobQueue, processor, cfg.Queue.MaxWorkers, logr)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logr.Info("received shutdown signal")
		cancel()
	}()

	logr.Info("worker started",
		zap.String("queue", cfg.Queue.NotificationQueue),
		zap.Int("max_workers", cfg.Queue.MaxWorkers))

	// 阻塞直到所有 worker 退出
	pool.Run(ctx)
	logr.Info("worker shutdown complete")
}
