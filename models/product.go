package models

import "time"

// Product is a catalog item identified by its RFID tag id.
type Product struct {
	ID                   string     `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name                 string     `gorm:"type:varchar(128);not null" json:"name"`
	Unit                 string     `gorm:"type:varchar(32)" json:"unit"`
	Price                float64    `gorm:"not null" json:"price"`
	Stock                int        `gorm:"not null;default:0" json:"stock"`
	Category             string     `gorm:"type:varchar(64)" json:"category"`
	Image                string     `gorm:"type:varchar(512)" json:"image"`
	Discount             float64    `gorm:"not null;default:0" json:"discount"` // percent, 0-90
	PromotionDescription string     `gorm:"type:varchar(256)" json:"promotion_description"`
	PromotionExpiry      *time.Time `json:"promotion_expiry,omitempty"`
	LastUpdated          time.Time  `gorm:"autoUpdateTime" json:"last_updated"`
}

// FinalPrice returns the unit price after the standing discount, rounded to
// 2 decimals. This is the price used for cart totals and sale snapshots.
func (p *Product) FinalPrice() float64 {
	return Round2(p.Price * (1 - p.Discount/100))
}

// CreateProductRequest is the payload for adding a catalog item.
type CreateProductRequest struct {
	ID                   string     `json:"id" binding:"required,min=1,max=32"`
	Name                 string     `json:"name" binding:"required"`
	Unit                 string     `json:"unit"`
	Price                float64    `json:"price" binding:"gte=0"`
	Stock                int        `json:"stock" binding:"gte=0"`
	Category             string     `json:"category"`
	Image                string     `json:"image"`
	Discount             float64    `json:"discount"`
	PromotionDescription string     `json:"promotion_description"`
	PromotionExpiry      *time.Time `json:"promotion_expiry"`
}

// ProductUpdate carries a partial update; only non-nil fields are applied.
type ProductUpdate struct {
	Name                 *string    `json:"name"`
	Unit                 *string    `json:"unit"`
	Price                *float64   `json:"price"`
	Stock                *int       `json:"stock"`
	Category             *string    `json:"category"`
	Image                *string    `json:"image"`
	Discount             *float64   `json:"discount"`
	PromotionDescription *string    `json:"promotion_description"`
	PromotionExpiry      *time.Time `json:"promotion_expiry"`
}

// Fields flattens the update into a column map for the repository.
func (u *ProductUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Unit != nil {
		fields["unit"] = *u.Unit
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.Stock != nil {
		fields["stock"] = *u.Stock
	}
	if u.Category != nil {
		fields["category"] = *u.Category
	}
	if u.Image != nil {
		fields["image"] = *u.Image
	}
	if u.Discount != nil {
		fields["discount"] = *u.Discount
	}
	if u.PromotionDescription != nil {
		fields["promotion_description"] = *u.PromotionDescription
	}
	if u.PromotionExpiry != nil {
		fields["promotion_expiry"] = *u.PromotionExpiry
	}
	return fields
}

// AdjustStockRequest is the payload for a manual stock delta.
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}
