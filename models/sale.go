package models

import "time"

// SaleItem is a cart line snapshotted at checkout. Product fields are
// denormalized so later catalog edits or deletions cannot change history.
type SaleItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price"`
	Discount   float64 `json:"discount"`
	FinalPrice float64 `json:"final_price"`
	Category   string  `json:"category"`
	Qty        int     `json:"qty"`
}

// Sale is an immutable record of a completed checkout. Items are stored as
// a serialized JSON snapshot in the items column.
type Sale struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	Total     float64   `gorm:"not null" json:"total"`
	ItemsJSON string    `gorm:"column:items;type:text;not null" json:"-"`

	Items []SaleItem `gorm:"-" json:"items"`
}

// CheckoutRequest is the payload for converting the cart into a sale.
type CheckoutRequest struct {
	DiscountPercent float64 `json:"discount_percent"`
}

// CheckoutResponse returns the persisted sale and the discount applied.
type CheckoutResponse struct {
	Sale            *Sale   `json:"order"`
	DiscountApplied float64 `json:"discount_applied"`
}
