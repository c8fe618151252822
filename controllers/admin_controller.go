package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smart-trolley-backend/audit"
	"smart-trolley-backend/middleware"
	"smart-trolley-backend/models"
	"smart-trolley-backend/services"
)

// AdminController serves the dashboard reads and the emergency cart reset.
type AdminController struct {
	analyticsService services.AnalyticsService
	checkoutService  services.CheckoutService
	cartService      services.CartService
	heartbeat        *services.HeartbeatTracker
	auditLog         audit.Log
}

// NewAdminController creates a new AdminController.
func NewAdminController(
	analyticsService services.AnalyticsService,
	checkoutService services.CheckoutService,
	cartService services.CartService,
	heartbeat *services.HeartbeatTracker,
	auditLog audit.Log,
) *AdminController {
	return &AdminController{
		analyticsService: analyticsService,
		checkoutService:  checkoutService,
		cartService:      cartService,
		heartbeat:        heartbeat,
		auditLog:         auditLog,
	}
}

// SalesHistory handles GET /sales.
func (ac *AdminController) SalesHistory(ctx *gin.Context) {
	sales, svcErr := ac.checkoutService.SalesHistory(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"sales": sales})
}

// Analytics handles GET /analytics with an optional end_date=YYYY-MM-DD
// query for the daily window.
func (ac *AdminController) Analytics(ctx *gin.Context) {
	var endDate *time.Time
	if raw := ctx.Query("end_date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected YYYY-MM-DD"})
			return
		}
		endDate = &parsed
	}

	report := ac.analyticsService.Report(ctx.Request.Context(), endDate)
	ctx.JSON(http.StatusOK, report)
}

// Alerts handles GET /alerts.
func (ac *AdminController) Alerts(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"alerts": ac.analyticsService.Alerts(ctx.Request.Context())})
}

// TrolleyStatus handles GET /trolley/status.
func (ac *AdminController) TrolleyStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, ac.heartbeat.Status())
}

// ClearCart handles POST /cart/clear (emergency reset, staff only).
func (ac *AdminController) ClearCart(ctx *gin.Context) {
	if svcErr := ac.cartService.Clear(ctx.Request.Context()); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ac.auditLog.Record(middleware.Actor(ctx), models.AuditActionCartCleared, "cart", nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
