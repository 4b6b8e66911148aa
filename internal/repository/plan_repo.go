package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/internal/model"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Plan{}).Count(&count).Error
	return count, err
}

func (r *PlanRepository) CreateBatch(plans []*model.Plan) error {
	return r.db.Create(plans).Error
}

// ListActive 上架的套餐，按价格升序
func (r *PlanRepository) ListActive() ([]model.Plan, error) {
	var plans []model.Plan
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *PlanRepository) GetByID(id string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) GetByType(planType model.PlanType) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.Where("type = ?", planType).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
