package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-trolley-backend/models"
)

// DefaultProducts seed the catalog the first time the service boots
// against an empty database.
var DefaultProducts = []models.Product{
	{ID: "03563B38", Name: "Milk Packet", Unit: "500 ml", Price: 25, Stock: 40, Category: "Dairy", Image: "/static/images/milk_packet.png"},
	{ID: "079B3F55", Name: "Biscuit Packet", Unit: "100 g", Price: 30, Stock: 50, Category: "Snacks", Image: "/static/images/biscuit_packet.png", Discount: 5, PromotionDescription: "Snack Time Deal!"},
	{ID: "435D1D39", Name: "Tea Powder", Unit: "250 g", Price: 160, Stock: 15, Category: "Beverages", Image: "/static/images/tea_powder.png"},
	{ID: "52612D5C", Name: "India Gate Basmati Rice", Unit: "5 kg", Price: 360, Stock: 12, Category: "Grains", Image: "/static/images/india_gate_rice.png", Discount: 10, PromotionDescription: "Mega Rice Offer"},
	{ID: "83E69038", Name: "Sugar", Unit: "1 kg", Price: 55, Stock: 25, Category: "Grains", Image: "/static/images/sugar.png"},
	{ID: "9917FEE4", Name: "Sunflower Oil", Unit: "1 L", Price: 140, Stock: 20, Category: "Oil", Image: "/static/images/sunflower_oil.png"},
	{ID: "B3211839", Name: "Bread Loaf", Unit: "400 g", Price: 50, Stock: 30, Category: "Bakery", Image: "/static/images/bread_loaf.png"},
	{ID: "E3F72C39", Name: "Aashirvaad Atta", Unit: "1 kg", Price: 45, Stock: 22, Category: "Grains", Image: "/static/images/aashirvaad_atta.png"},
}

// Seed inserts the default catalog when the products table is empty and
// fills in any missing default settings without touching existing values.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Create(&DefaultProducts).Error; err != nil {
			return err
		}
	}

	for key, value := range models.DefaultSettings {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Setting{Key: key, Value: value}).
			Error
		if err != nil {
			return err
		}
	}
	return nil
}
