package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/internal/model"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(offer *model.Offer) error {
	return r.db.Create(offer).Error
}

// GetByBrand 查询属于指定品牌的优惠活动
func (r *OfferRepository) GetByBrand(id, brandID string) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.Where("id = ? AND brand_id = ?", id, brandID).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *OfferRepository) ListByBrand(brandID string) ([]model.Offer, error) {
	var offers []model.Offer
	err := r.db.Where("brand_id = ?", brandID).Order("created_at DESC").Find(&offers).Error
	return offers, err
}

func (r *OfferRepository) Update(offer *model.Offer) error {
	return r.db.Save(offer).Error
}

func (r *OfferRepository) Delete(id, brandID string) (bool, error) {
	result := r.db.Where("id = ? AND brand_id = ?", id, brandID).Delete(&model.Offer{})
	return result.RowsAffected > 0, result.Error
}
