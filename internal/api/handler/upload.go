package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/api/middleware"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
	"github.com/qs3c/brand_go_server/internal/service"
)

type UploadHandler struct {
	uploadService *service.UploadService
	cfg           *config.Config
}

func NewUploadHandler(uploadService *service.UploadService, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		cfg:           cfg,
	}
}

// UploadLogo 上传品牌 logo
// POST /api/v1/upload/logo
func (h *UploadHandler) UploadLogo(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传文件")
		return
	}
	defer file.Close()

	// 多读一个字节，超限交给 service 判断
	reader := io.Reader(file)
	if max := h.cfg.Upload.MaxSize; max > 0 {
		reader = io.LimitReader(file, max+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return
	}

	brandID, _ := middleware.GetBrandID(c)
	resp, err := h.uploadService.UploadLogo(brandID, header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyFile),
			errors.Is(err, service.ErrFileTooLarge),
			errors.Is(err, service.ErrInvalidFormat):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrStorageUnavailable):
			response.ServerError(c, err.Error())
		default:
			response.ServerError(c, "文件上传失败")
		}
		return
	}

	response.SuccessWithMessage(c, "上传成功", resp)
}
