package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/internal/model"
)

type BrandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

func (r *BrandRepository) Create(brand *model.Brand) error {
	return r.db.Create(brand).Error
}

// CreateWithUser 同一事务内创建品牌和登录账号
func (r *BrandRepository) CreateWithUser(brand *model.Brand, user *model.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(brand).Error; err != nil {
			return err
		}
		user.BrandID = brand.ID
		return tx.Create(user).Error
	})
}

// GetByID 查询品牌，包含优惠活动与订阅（含套餐）
func (r *BrandRepository) GetByID(id string) (*model.Brand, error) {
	var brand model.Brand
	err := r.withRelations().Where("id = ?", id).First(&brand).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// GetBasic 仅查询品牌本身
func (r *BrandRepository) GetBasic(id string) (*model.Brand, error) {
	var brand model.Brand
	err := r.db.Where("id = ?", id).First(&brand).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *BrandRepository) GetBySubdomain(subdomain string) (*model.Brand, error) {
	var brand model.Brand
	err := r.withRelations().Where("subdomain = ?", subdomain).First(&brand).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *BrandRepository) ExistsByEmail(email string) (bool, error) {
	return r.exists("email = ?", email)
}

func (r *BrandRepository) ExistsByCompanyName(name string) (bool, error) {
	return r.exists("company_name = ?", name)
}

func (r *BrandRepository) ExistsBySubdomain(subdomain string) (bool, error) {
	return r.exists("subdomain = ?", subdomain)
}

// ExistsOther 检查除 id 外是否有品牌使用该字段值
func (r *BrandRepository) ExistsOther(id, column, value string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Brand{}).
		Where(column+" = ? AND id <> ?", value, id).
		Count(&count).Error
	return count > 0, err
}

func (r *BrandRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&model.Brand{}).Where("id = ?", id).Updates(fields).Error
}

func (r *BrandRepository) exists(query string, args ...interface{}) (bool, error) {
	var count int64
	err := r.db.Model(&model.Brand{}).Where(query, args...).Count(&count).Error
	return count > 0, err
}

func (r *BrandRepository) withRelations() *gorm.DB {
	return r.db.
		Preload("Offers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Subscriptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Subscriptions.Plan")
}
