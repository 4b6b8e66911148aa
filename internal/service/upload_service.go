package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/model/dto"
)

var (
	ErrFileTooLarge       = fmt.Errorf("文件过大")
	ErrInvalidFormat      = fmt.Errorf("仅支持 jpg、jpeg、png、gif 格式")
	ErrEmptyFile          = fmt.Errorf("文件为空")
	ErrStorageUnavailable = fmt.Errorf("对象存储未配置")
)

// LogoStore 保存 logo 文件，返回对象路径和访问 URL
type LogoStore interface {
	UploadLogo(brandID string, data []byte, ext string) (string, string, error)
}

type UploadService struct {
	store LogoStore
	cfg   *config.Config
	log   *zap.Logger
}

// NewUploadService store 为 nil 时上传返回 ErrStorageUnavailable
func NewUploadService(store LogoStore, cfg *config.Config, log *zap.Logger) *UploadService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadService{store: store, cfg: cfg, log: log}
}

// UploadLogo 校验并上传品牌 logo
func (s *UploadService) UploadLogo(brandID, filename string, data []byte) (*dto.UploadLogoResponse, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if max := s.cfg.Upload.MaxSize; max > 0 && int64(len(data)) > max {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !s.allowed(ext) {
		return nil, ErrInvalidFormat
	}

	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	objectKey, url, err := s.store.UploadLogo(brandID, data, ext)
	if err != nil {
		return nil, err
	}

	s.log.Info("logo uploaded",
		zap.String("brand_id", brandID),
		zap.String("object_key", objectKey),
		zap.Int("size", len(data)))

	return &dto.UploadLogoResponse{
		Filename:     filepath.Base(objectKey),
		URL:          url,
		OriginalName: filename,
		Size:         int64(len(data)),
	}, nil
}

func (s *UploadService) allowed(ext string) bool {
	allowed := s.cfg.Upload.AllowedExtensions
	if len(allowed) == 0 {
		allowed = []string{".jpg", ".jpeg", ".png", ".gif"}
	}
	for _, a := range allowed {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}
