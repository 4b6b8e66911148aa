package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/api"
	"github.com/qs3c/brand_go_server/internal/api/handler"
	"github.com/qs3c/brand_go_server/internal/database"
	"github.com/qs3c/brand_go_server/internal/pkg/cron"
	"github.com/qs3c/brand_go_server/internal/pkg/eventlog"
	"github.com/qs3c/brand_go_server/internal/pkg/logger"
	"github.com/qs3c/brand_go_server/internal/pkg/oss"
	"github.com/qs3c/brand_go_server/internal/pkg/payment"
	"github.com/qs3c/brand_go_server/internal/pkg/pubsub"
	"github.com/qs3c/brand_go_server/internal/pkg/queue"
	"github.com/qs3c/brand_go_server/internal/pkg/ws"
	"github.com/qs3c/brand_go_server/internal/repository"
	"github.com/qs3c/brand_go_server/internal/service"
)

const shutdownTimeout = 10 * time.Second

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

	// 初始化数据库
	db, err := database.Open(&cfg.Database, logr)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}
	logr.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	planRepo := repository.NewPlanRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	offerRepo := repository.NewOfferRepository(db)

	planService := service.NewPlanService(planRepo, subRepo, cfg, logr)
	seeded, err := planService.Seed()
	if err != nil {
		logr.Fatal("failed to seed plans", zap.Error(err))
	}
	logr.Info("plans seeded", zap.Int("created", seeded))

	// Stripe 网关，缺少密钥无法提供计费
	gateway, err := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, logr)
	if err != nil {
		logr.Fatal("failed to init stripe gateway", zap.Error(err))
	}

	billingService := service.NewBillingService(brandRepo, planRepo, subRepo, gateway, cfg, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub(logr)

	// Redis 可选，不可用时关闭事件去重和通知
	var jobs service.JobQueue
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, event ledger and notifications disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		logr.Info("redis connected")

		notificationQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
		jobs = notificationQueue

		ttl := time.Duration(cfg.Webhook.EventTTLHours) * time.Hour
		billingService.SetEventLedger(eventlog.NewStore(rdb, ttl))
		billingService.SetNotifier(service.NewRedisBillingNotifier(
			pubsub.NewPublisher(rdb), notificationQueue, brandRepo, logr))

		go forwardBillingEvents(ctx, rdb, wsHub, logr)
	}

	// 初始化 OSS（可选）
	var logoStore service.LogoStore
	if oss.Configured(&cfg.OSS) {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			logr.Warn("failed to init oss client", zap.Error(err))
		} else {
			logoStore = ossClient
			logr.Info("oss client initialized")
		}
	}

	// 初始化 Service
	authService := service.NewAuthService(userRepo, brandRepo, jobs, cfg, logr)
	brandService := service.NewBrandService(brandRepo, subRepo)
	offerService := service.NewOfferService(offerRepo)
	uploadService := service.NewUploadService(logoStore, cfg, logr)

	// 定时刷新本地订阅状态
	reconciler := cron.NewService(billingService,
		time.Duration(cfg.Cron.ReconcileIntervalMinutes)*time.Minute, logr)
	reconciler.Start()
	defer reconciler.Stop()

	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewPlanHandler(planService),
		handler.NewBrandHandler(brandService),
		handler.NewOfferHandler(offerService),
		handler.NewUploadHandler(uploadService, cfg),
		handler.NewBillingHandler(billingService, logr),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins, logr),
		brandService,
		cfg,
		logr,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logr.Info("received shutdown signal")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	// 已升级的 WebSocket 连接不受 Shutdown 管理
	wsHub.CloseAll()
	logr.Info("server stopped")
}

// forwardBillingEvents 把 Redis 上的计费消息推送给在线品牌
func forwardBillingEvents(ctx context.Context, rdb *redis.Client, hub *ws.Hub, logr *zap.Logger) {
	subscriber := pubsub.NewSubscriber(rdb)
	err := subscriber.Subscribe(ctx, func(msg *pubsub.BillingMessage) {
		if err := hub.SendToBrand(msg.BrandID, &ws.Message{Type: msg.Type, Data: msg}); err != nil {
			logr.Warn("failed to push billing event",
				zap.String("brand_id", msg.BrandID), zap.Error(err))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("billing subscriber stopped", zap.Error(err))
	}
}
