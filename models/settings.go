package models

// Setting is one key/value pair of store-wide configuration. The frozen
// product list is persisted under FrozenProductsKey as a JSON array value.
type Setting struct {
	Key   string `gorm:"type:varchar(64);primaryKey" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

// FrozenProductsKey is the settings key holding the emergency block list.
const FrozenProductsKey = "frozen_products"

// DefaultSettings seed the settings table on first boot.
var DefaultSettings = map[string]string{
	"app_name":           "Smart Trolley",
	"theme_bg_color":     "#f9fafb",
	"theme_text_color":   "#1f2937",
	"theme_nav_color":    "#4f46e5",
	"theme_button_color": "#4f46e5",
	"promo_banner_text":  "Welcome to Smart Trolley!",
	"promo_banner_image": "",
}

// FreezeRequest identifies a product for emergency freeze/unfreeze.
type FreezeRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}
