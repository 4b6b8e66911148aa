package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/internal/model"
	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/repository"
)

var ErrOfferNotFound = errors.New("优惠活动不存在")

type OfferService struct {
	offerRepo *repository.OfferRepository
}

func NewOfferService(offerRepo *repository.OfferRepository) *OfferService {
	return &OfferService{offerRepo: offerRepo}
}

// Create 创建优惠活动
func (s *OfferService) Create(brandID string, req *dto.CreateOfferRequest) (*model.Offer, error) {
	offer := &model.Offer{
		Title:        req.Title,
		Description:  req.Description,
		ExternalLink: req.ExternalLink,
		IsActive:     true,
		BrandID:      brandID,
	}
	if err := s.offerRepo.Create(offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// List 品牌的优惠活动，最新的在前
func (s *OfferService) List(brandID string) ([]model.Offer, error) {
	offers, err := s.offerRepo.ListByBrand(brandID)
	if err != nil {
		return nil, err
	}
	if offers == nil {
		offers = []model.Offer{}
	}
	return offers, nil
}

// Get 其他品牌的活动同样返回不存在
func (s *OfferService) Get(id, brandID string) (*model.Offer, error) {
	offer, err := s.offerRepo.GetByBrand(id, brandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return offer, nil
}

// Update 部分更新
func (s *OfferService) Update(id, brandID string, req *dto.UpdateOfferRequest) (*model.Offer, error) {
	offer, err := s.Get(id, brandID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.Description != nil {
		offer.Description = *req.Description
	}
	if req.ExternalLink != nil {
		offer.ExternalLink = req.ExternalLink
	}
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}

	if err := s.offerRepo.Update(offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// Delete 删除优惠活动
func (s *OfferService) Delete(id, brandID string) error {
	deleted, err := s.offerRepo.Delete(id, brandID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrOfferNotFound
	}
	return nil
}
