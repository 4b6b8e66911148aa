package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/brand_go_server/internal/api/middleware"
	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
	"github.com/qs3c/brand_go_server/internal/service"
)

type OfferHandler struct {
	offerService *service.OfferService
}

func NewOfferHandler(offerService *service.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// Create 创建优惠活动
// POST /api/v1/offers
func (h *OfferHandler) Create(c *gin.Context) {
	var req dto.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	brandID, _ := middleware.GetBrandID(c)
	offer, err := h.offerService.Create(brandID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "创建成功", offer)
}

// List 本品牌的优惠活动
// GET /api/v1/offers
func (h *OfferHandler) List(c *gin.Context) {
	brandID, _ := middleware.GetBrandID(c)
	offers, err := h.offerService.List(brandID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, offers)
}

// Get 优惠活动详情
// GET /api/v1/offers/:id
func (h *OfferHandler) Get(c *gin.Context) {
	brandID, _ := middleware.GetBrandID(c)
	offer, err := h.offerService.Get(c.Param("id"), brandID)
	if err != nil {
		writeOfferError(c, err)
		return
	}
	response.Success(c, offer)
}

// Update 部分更新
// PATCH /api/v1/offers/:id
func (h *OfferHandler) Update(c *gin.Context) {
	var req dto.UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	brandID, _ := middleware.GetBrandID(c)
	offer, err := h.offerService.Update(c.Param("id"), brandID, &req)
	if err != nil {
		writeOfferError(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", offer)
}

// Delete 删除
// DELETE /api/v1/offers/:id
func (h *OfferHandler) Delete(c *gin.Context) {
	brandID, _ := middleware.GetBrandID(c)
	if err := h.offerService.Delete(c.Param("id"), brandID); err != nil {
		writeOfferError(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

func writeOfferError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrOfferNotFound) {
		response.NotFoundError(c, err.Error())
		return
	}
	response.ServerError(c, "")
}
