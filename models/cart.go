package models

import (
	"math"
	"time"
)

// CartLine is a product in the active cart. Quantity is always >= 1; a line
// that would reach zero is removed instead.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the single active trolley session, stored as one Redis value.
type Cart struct {
	TrolleyID string     `json:"trolley_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Line returns the index of the line for a product, or -1.
func (c *Cart) Line(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// CartViewItem is a cart line joined with current catalog pricing.
type CartViewItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price"`
	Discount   float64 `json:"discount"`
	FinalPrice float64 `json:"final_price"`
	Category   string  `json:"category"`
	Image      string  `json:"image"`
	Qty        int     `json:"qty"`
}

// CartView is the computed read model of the cart.
type CartView struct {
	Items map[string]CartViewItem `json:"items"`
	Total float64                 `json:"total"`
}

// ItemCount sums quantities across all lines.
func (v *CartView) ItemCount() int {
	n := 0
	for _, item := range v.Items {
		n += item.Qty
	}
	return n
}

// ScanRequest identifies a product by its RFID tag id.
type ScanRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
