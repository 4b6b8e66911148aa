package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/internal/api/middleware"
	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
	"github.com/qs3c/brand_go_server/internal/service"
)

const signatureHeader = "Stripe-Signature"

type BillingHandler struct {
	billingService *service.BillingService
	log            *zap.Logger
}

func NewBillingHandler(billingService *service.BillingService, log *zap.Logger) *BillingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BillingHandler{billingService: billingService, log: log}
}

// CreateCheckoutSession 创建支付会话
// POST /api/v1/stripe/create-checkout-session
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	var req dto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.billingService.CreateCheckoutSession(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, resp)
}

// Webhook 接收 Stripe 事件，需要原始请求体校验签名
// POST /api/v1/stripe/webhook
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.Abort(c, http.StatusBadRequest, response.CodeParamError, "无法读取请求体")
		return
	}

	ack, err := h.billingService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			response.Abort(c, http.StatusBadRequest, response.CodeSignatureInvalid, "")
		case errors.Is(err, service.ErrInvalidEvent),
			errors.Is(err, service.ErrMissingMetadata),
			errors.Is(err, service.ErrBrandNotFound),
			errors.Is(err, service.ErrPlanNotFound):
			h.log.Warn("webhook rejected", zap.Error(err))
			response.Abort(c, http.StatusBadRequest, response.CodeParamError, err.Error())
		default:
			// 返回 500 让 Stripe 重投
			h.log.Error("webhook processing failed", zap.Error(err))
			response.Abort(c, http.StatusInternalServerError, response.CodeServerError, "")
		}
		return
	}
	// Stripe 回执不使用统一响应包装
	c.JSON(http.StatusOK, ack)
}

// VerifySession 支付完成后前端主动确认
// GET /api/v1/stripe/verify-session/:sessionId
func (h *BillingHandler) VerifySession(c *gin.Context) {
	resp, err := h.billingService.VerifySession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, resp)
}

// Invoices 当前品牌的账单
// GET /api/v1/stripe/invoices
func (h *BillingHandler) Invoices(c *gin.Context) {
	brandID, _ := middleware.GetBrandID(c)
	invoices, err := h.billingService.ListInvoices(c.Request.Context(), brandID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, invoices)
}

func (h *BillingHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBrandNotFound), errors.Is(err, service.ErrPlanNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrGatewayFailure):
		response.GatewayError(c, err.Error())
	default:
		h.log.Error("billing request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.ServerError(c, "")
	}
}
