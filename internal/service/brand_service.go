package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/internal/model"
	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/repository"
)

var ErrBrandForbidden = errors.New("只能修改自己的品牌")

type BrandService struct {
	brandRepo *repository.BrandRepository
	subRepo   *repository.SubscriptionRepository
}

func NewBrandService(brandRepo *repository.BrandRepository, subRepo *repository.SubscriptionRepository) *BrandService {
	return &BrandService{brandRepo: brandRepo, subRepo: subRepo}
}

// Get 获取品牌（含优惠活动和订阅）
func (s *BrandService) Get(id string) (*model.Brand, error) {
	brand, err := s.brandRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return brand, nil
}

// GetBySubdomain 按子域名获取品牌
func (s *BrandService) GetBySubdomain(subdomain string) (*model.Brand, error) {
	brand, err := s.brandRepo.GetBySubdomain(strings.ToLower(subdomain))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return brand, nil
}

// UpdateConfig 更新公司名和邮箱
func (s *BrandService) UpdateConfig(id, callerBrandID string, req *dto.UpdateBrandConfigRequest) (*model.Brand, error) {
	if err := s.checkOwner(id, callerBrandID); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.CompanyName != nil {
		name := strings.TrimSpace(*req.CompanyName)
		taken, err := s.brandRepo.ExistsOther(id, "company_name", name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCompanyExists
		}
		fields["company_name"] = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		taken, err := s.brandRepo.ExistsOther(id, "email", email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
		fields["email"] = email
	}

	return s.apply(id, fields)
}

// UpdateAppConfig 更新 App 外观
func (s *BrandService) UpdateAppConfig(id, callerBrandID string, req *dto.UpdateBrandAppConfigRequest) (*model.Brand, error) {
	if err := s.checkOwner(id, callerBrandID); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	setIf := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	setIf("app_name", req.AppName)
	setIf("logo_url", req.LogoURL)
	setIf("primary_color", req.PrimaryColor)
	setIf("secondary_color", req.SecondaryColor)
	setIf("typography", req.Typography)

	return s.apply(id, fields)
}

// GenerateAppConfig 生成移动端 App 配置，模块由当前有效套餐决定
func (s *BrandService) GenerateAppConfig(id string) (*dto.AppConfigResponse, error) {
	brand, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	resp := &dto.AppConfigResponse{
		Brand: dto.AppConfigBrand{
			ID:             brand.ID,
			CompanyName:    brand.CompanyName,
			AppName:        brand.AppName,
			LogoURL:        brand.LogoURL,
			PrimaryColor:   brand.PrimaryColor,
			SecondaryColor: brand.SecondaryColor,
			Typography:     brand.Typography,
		},
		Modules: model.EmptyFeatures(),
	}

	if sub := brand.ActiveSubscription(); sub != nil && sub.Plan != nil {
		features := normalizeFeatures(sub.Plan.Features.Data())
		resp.Plan = &dto.AppConfigPlan{
			Type:     sub.Plan.Type,
			Name:     sub.Plan.Name,
			Features: features,
		}
		resp.Modules = features
	}
	return resp, nil
}

// HasFeature 品牌当前套餐是否包含某功能
func (s *BrandService) HasFeature(brandID, role, feature string) (bool, error) {
	features, _, err := activeFeatures(s.subRepo, brandID)
	if err != nil {
		return false, err
	}
	return features.Has(role, feature), nil
}

func (s *BrandService) checkOwner(id, callerBrandID string) error {
	if _, err := s.brandRepo.GetBasic(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBrandNotFound
		}
		return err
	}
	if id != callerBrandID {
		return ErrBrandForbidden
	}
	return nil
}

func (s *BrandService) apply(id string, fields map[string]interface{}) (*model.Brand, error) {
	if len(fields) > 0 {
		if err := s.brandRepo.UpdateFields(id, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrCompanyExists
			}
			return nil, err
		}
	}
	return s.Get(id)
}
