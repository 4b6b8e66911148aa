package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/brand_go_server/internal/model"
)

var errSubscriptionExists = errors.New("subscription already materialized")

// MaterializeResult CreateIfAbsent 的结果
type MaterializeResult struct {
	Subscription *model.Subscription
	Created      bool
	// Superseded 因新订阅生效而被本地取消的旧订阅
	Superseded []model.Subscription
}

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetByID(id string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Preload("Plan").Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByStripeID(stripeSubscriptionID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Preload("Plan").Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindActive 查询品牌在某套餐下的有效订阅
func (r *SubscriptionRepository) FindActive(brandID, planID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Preload("Plan").
		Where("brand_id = ? AND plan_id = ? AND status = ?", brandID, planID, model.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindActiveByBrand 查询品牌当前有效订阅
func (r *SubscriptionRepository) FindActiveByBrand(brandID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Preload("Plan").
		Where("brand_id = ? AND status = ?", brandID, model.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindLatestByBrand 查询品牌最近一条订阅（任意状态）
func (r *SubscriptionRepository) FindLatestByBrand(brandID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("brand_id = ?", brandID).Order("created_at DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) ListByBrand(brandID string) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Preload("Plan").
		Where("brand_id = ?", brandID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

// CreateIfAbsent 以 stripe_subscription_id 为幂等键写入订阅。
// 已存在时返回已有记录且 Created 为 false；新写入的 active 订阅会在同一事务内
// 将该品牌其余 active 订阅置为 canceled。
func (r *SubscriptionRepository) CreateIfAbsent(sub *model.Subscription) (*MaterializeResult, error) {
	result := &MaterializeResult{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
			DoNothing: true,
		}).Create(sub)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return errSubscriptionExists
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errSubscriptionExists
		}

		result.Created = true
		if sub.Status != model.SubscriptionStatusActive {
			return nil
		}

		previous, err := supersedeOthers(tx, sub.BrandID, sub.ID)
		if err != nil {
			return err
		}
		result.Superseded = previous
		return nil
	})

	switch {
	case errors.Is(err, errSubscriptionExists):
		// 并发写入的另一方已成功，读取其记录
		existing, err := r.GetByStripeID(sub.StripeSubscriptionID)
		if err != nil {
			return nil, err
		}
		result.Created = false
		result.Subscription = existing
		return result, nil
	case err != nil:
		return nil, err
	}

	stored, err := r.GetByID(sub.ID)
	if err != nil {
		return nil, err
	}
	result.Subscription = stored
	return result, nil
}

// UpdateStatus 更新订阅状态，已取消的订阅不再变更。返回是否有记录被修改
func (r *SubscriptionRepository) UpdateStatus(stripeSubscriptionID string, status model.SubscriptionStatus) (bool, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("stripe_subscription_id = ? AND status <> ? AND status <> ?",
			stripeSubscriptionID, model.SubscriptionStatusCanceled, status).
		Update("status", status)
	return result.RowsAffected > 0, result.Error
}

// SyncResult 按网关数据同步单条订阅的结果
type SyncResult struct {
	Changed bool
	// Superseded 该订阅恢复 active 时被本地取消的同品牌订阅
	Superseded []model.Subscription
}

// UpdateFromGateway 同步状态与计费周期，已取消的订阅不再变更。
// 从非 active 变为 active 时，在同一事务内取消该品牌其余 active 订阅。
func (r *SubscriptionRepository) UpdateFromGateway(id string, status model.SubscriptionStatus, periodStart, periodEnd time.Time) (*SyncResult, error) {
	result := &SyncResult{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var current model.Subscription
		if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Subscription{}).
			Where("id = ? AND status <> ?", id, model.SubscriptionStatusCanceled).
			Updates(map[string]interface{}{
				"status":               status,
				"current_period_start": periodStart,
				"current_period_end":   periodEnd,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		result.Changed = true

		// 只有从非 active 恢复为 active 时才替换其他订阅
		if status != model.SubscriptionStatusActive || current.Status == model.SubscriptionStatusActive {
			return nil
		}
		previous, err := supersedeOthers(tx, current.BrandID, id)
		if err != nil {
			return err
		}
		result.Superseded = previous
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// supersedeOthers 将品牌除 keepID 外的 active 订阅置为 canceled，返回被取消的记录
func supersedeOthers(tx *gorm.DB, brandID, keepID string) ([]model.Subscription, error) {
	var previous []model.Subscription
	err := tx.Preload("Plan").
		Where("brand_id = ? AND status = ? AND id <> ?", brandID, model.SubscriptionStatusActive, keepID).
		Find(&previous).Error
	if err != nil {
		return nil, err
	}
	if len(previous) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(previous))
	for i := range previous {
		ids = append(ids, previous[i].ID)
		previous[i].Status = model.SubscriptionStatusCanceled
	}
	err = tx.Model(&model.Subscription{}).
		Where("id IN ?", ids).
		Update("status", model.SubscriptionStatusCanceled).Error
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// ListStale 计费周期已结束但仍未取消的订阅
func (r *SubscriptionRepository) ListStale(before time.Time, limit int) ([]model.Subscription, error) {
	var subs []model.Subscription
	query := r.db.Preload("Plan").
		Where("status <> ? AND current_period_end < ?", model.SubscriptionStatusCanceled, before).
		Order("current_period_end ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&subs).Error
	return subs, err
}
