package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-trolley-backend/models"
	"smart-trolley-backend/services"
)

// CartController handles the customer-facing cart and checkout endpoints.
type CartController struct {
	cartService     services.CartService
	checkoutService services.CheckoutService
}

// NewCartController creates a new CartController.
func NewCartController(cartService services.CartService, checkoutService services.CheckoutService) *CartController {
	return &CartController{
		cartService:     cartService,
		checkoutService: checkoutService,
	}
}

// Scan handles POST /cart/scan (the RFID reader callback).
func (cc *CartController) Scan(ctx *gin.Context) {
	var req models.ScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	view, svcErr := cc.cartService.Scan(ctx.Request.Context(), req.ProductID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "cart": view})
}

// Unscan handles POST /cart/unscan.
func (cc *CartController) Unscan(ctx *gin.Context) {
	var req models.ScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	view, svcErr := cc.cartService.Unscan(ctx.Request.Context(), req.ProductID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "cart": view})
}

// GetCart handles GET /cart.
func (cc *CartController) GetCart(ctx *gin.Context) {
	view, svcErr := cc.cartService.View(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// Checkout handles POST /checkout. The body is optional; a missing one
// means no order-level discount. EOF is the only bind error tolerated, so
// a chunked body still gets decoded.
func (cc *CartController) Checkout(ctx *gin.Context) {
	var req models.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resp, svcErr := cc.checkoutService.Checkout(ctx.Request.Context(), req.DiscountPercent)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"message":          "Checkout successful",
		"order":            resp.Sale,
		"discount_applied": resp.DiscountApplied,
	})
}
