package routes

import (
	"github.com/gin-gonic/gin"

	"smart-trolley-backend/controllers"
	"smart-trolley-backend/middleware"
)

// Register wires the customer and staff surfaces onto the router.
func Register(
	r *gin.Engine,
	cart *controllers.CartController,
	catalog *controllers.CatalogController,
	promotion *controllers.PromotionController,
	admin *controllers.AdminController,
	jwtSecret string,
) {
	// Customer-facing endpoints (the trolley itself)
	r.GET("/products", catalog.ListProducts)
	r.POST("/cart/scan", cart.Scan)
	r.POST("/cart/unscan", cart.Unscan)
	r.GET("/cart", cart.GetCart)
	r.POST("/checkout", cart.Checkout)
	r.GET("/promotions/current", promotion.GetCurrent)
	r.GET("/settings", promotion.GetSettings)

	// Staff endpoints
	staff := r.Group("")
	staff.Use(middleware.StaffAuth(jwtSecret))
	staff.POST("/products", catalog.CreateProduct)
	staff.PATCH("/products/:id", catalog.UpdateProduct)
	staff.DELETE("/products/:id", catalog.DeleteProduct)
	staff.POST("/products/:id/stock", catalog.AdjustStock)
	staff.POST("/products/freeze", promotion.FreezeProduct)
	staff.POST("/products/unfreeze", promotion.UnfreezeProduct)
	staff.GET("/products/frozen", promotion.ListFrozen)
	staff.GET("/promotions", promotion.ListPromotions)
	staff.POST("/promotions", promotion.AddPromotion)
	staff.DELETE("/promotions/:id", promotion.DeletePromotion)
	staff.POST("/settings", promotion.UpdateSettings)
	staff.POST("/cart/clear", admin.ClearCart)

	// Admin dashboard reads
	dashboard := staff.Group("")
	dashboard.Use(middleware.AdminOnly())
	dashboard.GET("/sales", admin.SalesHistory)
	dashboard.GET("/analytics", admin.Analytics)
	dashboard.GET("/alerts", admin.Alerts)
	dashboard.GET("/trolley/status", admin.TrolleyStatus)
}
