package dto

// CreateOfferRequest 创建优惠活动
type CreateOfferRequest struct {
	Title        string  `json:"title" binding:"required,max=200"`
	Description  string  `json:"description" binding:"required"`
	ExternalLink *string `json:"externalLink" binding:"omitempty,url"`
}

// UpdateOfferRequest 部分更新优惠活动
type UpdateOfferRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description  *string `json:"description" binding:"omitempty,min=1"`
	ExternalLink *string `json:"externalLink" binding:"omitempty,url"`
	IsActive     *bool   `json:"isActive"`
}
