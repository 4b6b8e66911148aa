package model

import (
	"time"

	"gorm.io/gorm"
)

// User 品牌方登录账号
type User struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FirstName    *string   `gorm:"size:50" json:"firstName"`
	LastName     *string   `gorm:"size:50" json:"lastName"`
	BrandID      string    `gorm:"type:char(36);not null;index" json:"brandId"`
	Brand        *Brand    `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
