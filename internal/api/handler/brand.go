package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/brand_go_server/internal/api/middleware"
	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
	"github.com/qs3c/brand_go_server/internal/service"
)

type BrandHandler struct {
	brandService *service.BrandService
}

func NewBrandHandler(brandService *service.BrandService) *BrandHandler {
	return &BrandHandler{brandService: brandService}
}

// Get 品牌详情
// GET /api/v1/brands/:id
func (h *BrandHandler) Get(c *gin.Context) {
	brand, err := h.brandService.Get(c.Param("id"))
	if err != nil {
		writeBrandError(c, err)
		return
	}
	response.Success(c, brand)
}

// GetBySubdomain 按子域名查询品牌
// GET /api/v1/brands/subdomain/:subdomain
func (h *BrandHandler) GetBySubdomain(c *gin.Context) {
	brand, err := h.brandService.GetBySubdomain(c.Param("subdomain"))
	if err != nil {
		writeBrandError(c, err)
		return
	}
	response.Success(c, brand)
}

// UpdateConfig 更新公司名、邮箱
// PUT /api/v1/brands/:id/config
func (h *BrandHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateBrandConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	caller, _ := middleware.GetBrandID(c)
	brand, err := h.brandService.UpdateConfig(c.Param("id"), caller, &req)
	if err != nil {
		writeBrandError(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", brand)
}

// UpdateAppConfig 更新 App 外观
// PUT /api/v1/brands/:id/app-config
func (h *BrandHandler) UpdateAppConfig(c *gin.Context) {
	var req dto.UpdateBrandAppConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	caller, _ := middleware.GetBrandID(c)
	brand, err := h.brandService.UpdateAppConfig(c.Param("id"), caller, &req)
	if err != nil {
		writeBrandError(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", brand)
}

// AppConfig 生成移动端 App 配置
// GET /api/v1/brands/:id/app-config.json
func (h *BrandHandler) AppConfig(c *gin.Context) {
	cfg, err := h.brandService.GenerateAppConfig(c.Param("id"))
	if err != nil {
		writeBrandError(c, err)
		return
	}
	response.Success(c, cfg)
}

func writeBrandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBrandNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrBrandForbidden):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrCompanyExists), errors.Is(err, service.ErrEmailExists):
		response.DuplicateError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
