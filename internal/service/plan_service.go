package service

import (
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/config"
	"github.com/qs3c/brand_go_server/internal/model"
	"github.com/qs3c/brand_go_server/internal/repository"
)

var ErrPlanNotFound = errors.New("套餐不存在")

type PlanService struct {
	planRepo *repository.PlanRepository
	subRepo  *repository.SubscriptionRepository
	cfg      *config.Config
	log      *zap.Logger
}

func NewPlanService(
	planRepo *repository.PlanRepository,
	subRepo *repository.SubscriptionRepository,
	cfg *config.Config,
	log *zap.Logger,
) *PlanService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlanService{
		planRepo: planRepo,
		subRepo:  subRepo,
		cfg:      cfg,
		log:      log,
	}
}

// List 获取上架套餐，按价格升序
func (s *PlanService) List() ([]model.Plan, error) {
	return s.planRepo.ListActive()
}

// Get 获取套餐详情
func (s *PlanService) Get(id string) (*model.Plan, error) {
	plan, err := s.planRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// Seed 套餐表为空时写入默认套餐，返回写入数量
func (s *PlanService) Seed() (int, error) {
	count, err := s.planRepo.Count()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	plans := DefaultPlans(s.cfg.Stripe.Products)
	if err := s.planRepo.CreateBatch(plans); err != nil {
		return 0, err
	}

	s.log.Info("plans seeded", zap.Int("count", len(plans)))
	return len(plans), nil
}

// ListSubscriptions 获取品牌的全部订阅（含套餐），最新的在前
func (s *PlanService) ListSubscriptions(brandID string) ([]model.Subscription, error) {
	return s.subRepo.ListByBrand(brandID)
}

// FeaturesFor 品牌当前可用的功能，无有效订阅时为两个空列表
func (s *PlanService) FeaturesFor(brandID string) (model.PlanFeatures, error) {
	features, _, err := activeFeatures(s.subRepo, brandID)
	return features, err
}

// activeFeatures 查询品牌有效订阅对应的套餐功能
func activeFeatures(subRepo *repository.SubscriptionRepository, brandID string) (model.PlanFeatures, *model.Plan, error) {
	sub, err := subRepo.FindActiveByBrand(brandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.EmptyFeatures(), nil, nil
		}
		return model.PlanFeatures{}, nil, err
	}
	if sub.Plan == nil {
		return model.EmptyFeatures(), nil, nil
	}
	return normalizeFeatures(sub.Plan.Features.Data()), sub.Plan, nil
}

func normalizeFeatures(f model.PlanFeatures) model.PlanFeatures {
	if f.Ambassador == nil {
		f.Ambassador = []string{}
	}
	if f.Brand == nil {
		f.Brand = []string{}
	}
	return f
}

// DefaultPlans 默认三档套餐，高档套餐包含低档全部功能
func DefaultPlans(products map[string]string) []*model.Plan {
	starter := model.PlanFeatures{
		Ambassador: []string{"Offer consultation", "Account management"},
		Brand:      []string{"Offer creation", "User management", "Plan management"},
	}
	pro := model.PlanFeatures{
		Ambassador: extend(starter.Ambassador, "Chat", "Campaigns"),
		Brand:      extend(starter.Brand, "Chat", "Campaign management"),
	}
	enterprise := model.PlanFeatures{
		Ambassador: extend(pro.Ambassador, "Payment management"),
		Brand:      extend(pro.Brand, "Ambassador payment management"),
	}

	newPlan := func(planType model.PlanType, name string, price int64, features model.PlanFeatures) *model.Plan {
		return &model.Plan{
			Type:            planType,
			Name:            name,
			Price:           decimal.NewFromInt(price),
			StripeProductID: products[string(planType)],
			Features:        datatypes.NewJSONType(features),
			IsActive:        true,
		}
	}

	return []*model.Plan{
		newPlan(model.PlanTypeStarter, "Starter", 99, starter),
		newPlan(model.PlanTypePro, "Pro", 199, pro),
		newPlan(model.PlanTypeEnterprise, "Enterprise", 299, enterprise),
	}
}

func extend(base []string, more ...string) []string {
	out := make([]string, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}
