package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/brand_go_server/internal/api/middleware"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
	"github.com/qs3c/brand_go_server/internal/service"
)

type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// List 上架套餐
// GET /api/v1/plans
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.planService.List()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, plans)
}

// Get 套餐详情
// GET /api/v1/plans/:id
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.planService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}
	response.Success(c, plan)
}

// Subscriptions 品牌的订阅记录，只能查看自己的品牌
// GET /api/v1/plans/subscriptions/:brandId
func (h *PlanHandler) Subscriptions(c *gin.Context) {
	brandID := c.Param("brandId")
	if caller, _ := middleware.GetBrandID(c); caller != brandID {
		response.PermissionError(c, "")
		return
	}

	subs, err := h.planService.ListSubscriptions(brandID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, subs)
}
