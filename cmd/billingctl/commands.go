package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/database"
	"github.com/qs3c/brand_go_server/internal/pkg/logger"
	"github.com/qs3c/brand_go_server/internal/pkg/payment"
	"github.com/qs3c/brand_go_server/internal/repository"
	"github.com/qs3c/brand_go_server/internal/service"
)

const offlineWebhookSecret = "whsec_billingctl_offline"

// app 子命令共用的依赖
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	plans   *service.PlanService
	billing *service.BillingService
}

// loadApp 打开数据库，needGateway 为 true 时同时创建 Stripe 网关
func loadApp(configPath string, needGateway bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg.Log, cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(&cfg.Database, logr)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	brandRepo := repository.NewBrandRepository(db)
	planRepo := repository.NewPlanRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	a := &app{
		cfg:   cfg,
		log:   logr,
		plans: service.NewPlanService(planRepo, subRepo, cfg, logr),
	}

	if needGateway {
		webhookSecret := cfg.Stripe.WebhookSecret
		if webhookSecret == "" {
			// 命令行不接收 webhook，签名密钥仅占位
			webhookSecret = offlineWebhookSecret
		}
		gateway, err := payment.NewStripeGateway(cfg.Stripe.SecretKey, webhookSecret, logr)
		if err != nil {
			return nil, fmt.Errorf("init stripe gateway: %w", err)
		}
		a.billing = service.NewBillingService(brandRepo, planRepo, subRepo, gateway, cfg, logr)
	}
	return a, nil
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "billingctl",
		Short:         "品牌订阅计费运维工具",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "config file path")

	root.AddCommand(
		newSeedPlansCmd(&configPath),
		newReconcileCmd(&configPath),
		newVerifySessionCmd(&configPath),
		newInvoicesCmd(&configPath),
	)
	return root
}

func newSeedPlansCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-plans",
		Short: "写入缺失的默认套餐",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, false)
			if err != nil {
				return err
			}
			created, err := a.plans.Seed()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d plans\n", created)
			return nil
		},
	}
}

func newReconcileCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "同步计费周期已结束的订阅",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, true)
			if err != nil {
				return err
			}
			result, err := a.billing.RefreshStale(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

// 回调丢失时手动补建订阅
func newVerifySessionCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-session <sessionId>",
		Short: "确认支付会话并生成订阅",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, true)
			if err != nil {
				return err
			}
			result, err := a.billing.VerifySession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newInvoicesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "invoices <brandId>",
		Short: "列出品牌的 Stripe 账单",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, true)
			if err != nil {
				return err
			}
			invoices, err := a.billing.ListInvoices(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), invoices)
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
