package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/api/handler"
	"github.com/qs3c/brand_go_server/internal/api/middleware"
	"github.com/qs3c/brand_go_server/internal/model"
)

// 创建优惠活动需要的套餐功能
const featureOfferCreation = "Offer creation"

type Router struct {
	authHandler      *handler.AuthHandler
	planHandler      *handler.PlanHandler
	brandHandler     *handler.BrandHandler
	offerHandler     *handler.OfferHandler
	uploadHandler    *handler.UploadHandler
	billingHandler   *handler.BillingHandler
	websocketHandler *handler.WebSocketHandler
	features         middleware.FeatureChecker
	cfg              *config.Config
	log              *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	planHandler *handler.PlanHandler,
	brandHandler *handler.BrandHandler,
	offerHandler *handler.OfferHandler,
	uploadHandler *handler.UploadHandler,
	billingHandler *handler.BillingHandler,
	websocketHandler *handler.WebSocketHandler,
	features middleware.FeatureChecker,
	cfg *config.Config,
	log *zap.Logger,
) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		authHandler:      authHandler,
		planHandler:      planHandler,
		brandHandler:     brandHandler,
		offerHandler:     offerHandler,
		uploadHandler:    uploadHandler,
		billingHandler:   billingHandler,
		websocketHandler: websocketHandler,
		features:         features,
		cfg:              cfg,
		log:              log,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(r.log))
	engine.Use(middleware.CORS(r.cfg.CORS))

	auth := middleware.Auth(r.cfg.JWT.Secret)

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 认证
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", r.authHandler.Register)
			authGroup.POST("/login", r.authHandler.Login)
			authGroup.GET("/profile", auth, r.authHandler.Profile)
		}

		// 套餐
		plans := api.Group("/plans")
		{
			plans.GET("", r.planHandler.List)
			plans.GET("/subscriptions/:brandId", auth, r.planHandler.Subscriptions)
			plans.GET("/:id", r.planHandler.Get)
		}

		// 支付，webhook 与会话确认为公开接口
		stripe := api.Group("/stripe")
		{
			stripe.POST("/create-checkout-session", r.billingHandler.CreateCheckoutSession)
			stripe.POST("/webhook", r.billingHandler.Webhook)
			stripe.GET("/verify-session/:sessionId", r.billingHandler.VerifySession)
			stripe.GET("/invoices", auth, r.billingHandler.Invoices)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(auth)
		{
			brands := authenticated.Group("/brands")
			{
				brands.GET("/subdomain/:subdomain", r.brandHandler.GetBySubdomain)
				brands.GET("/:id", r.brandHandler.Get)
				brands.PUT("/:id/config", r.brandHandler.UpdateConfig)
				brands.PUT("/:id/app-config", r.brandHandler.UpdateAppConfig)
				brands.GET("/:id/app-config.json", r.brandHandler.AppConfig)
			}

			offers := authenticated.Group("/offers")
			{
				offers.POST("", middleware.RequireFeature(r.features, model.FeatureRoleBrand, featureOfferCreation), r.offerHandler.Create)
				offers.GET("", r.offerHandler.List)
				offers.GET("/:id", r.offerHandler.Get)
				offers.PATCH("/:id", r.offerHandler.Update)
				offers.DELETE("/:id", r.offerHandler.Delete)
			}

			authenticated.POST("/upload/logo", r.uploadHandler.UploadLogo)
		}
	}

	return engine
}
