package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smart-trolley-backend/audit"
	"smart-trolley-backend/middleware"
	"smart-trolley-backend/models"
	"smart-trolley-backend/services"
)

// PromotionController handles campaigns, the emergency freeze list and
// store settings.
type PromotionController struct {
	promotionService services.PromotionService
	auditLog         audit.Log
}

// NewPromotionController creates a new PromotionController.
func NewPromotionController(promotionService services.PromotionService, auditLog audit.Log) *PromotionController {
	return &PromotionController{promotionService: promotionService, auditLog: auditLog}
}

// GetCurrent handles GET /promotions/current (trolley display poll).
func (pc *PromotionController) GetCurrent(ctx *gin.Context) {
	current, svcErr := pc.promotionService.Current(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, current)
}

// ListPromotions handles GET /promotions (staff only).
func (pc *PromotionController) ListPromotions(ctx *gin.Context) {
	promotions, svcErr := pc.promotionService.ListPromotions(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"promotions": promotions})
}

// AddPromotion handles POST /promotions (staff only).
func (pc *PromotionController) AddPromotion(ctx *gin.Context) {
	var req models.AddPromotionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	promotion, svcErr := pc.promotionService.AddPromotion(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	pc.auditLog.Record(middleware.Actor(ctx), models.AuditActionPromotionAdded,
		strconv.FormatUint(uint64(promotion.ID), 10),
		map[string]interface{}{"type": promotion.Type, "title": promotion.Title})

	ctx.JSON(http.StatusCreated, gin.H{"promotion": promotion})
}

// DeletePromotion handles DELETE /promotions/:id (staff only).
func (pc *PromotionController) DeletePromotion(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promotion id"})
		return
	}

	if svcErr := pc.promotionService.DeletePromotion(ctx.Request.Context(), uint(id)); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	pc.auditLog.Record(middleware.Actor(ctx), models.AuditActionPromotionDeleted, ctx.Param("id"), nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "Promotion deleted"})
}

// FreezeProduct handles POST /products/freeze (staff only).
func (pc *PromotionController) FreezeProduct(ctx *gin.Context) {
	var req models.FreezeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := pc.promotionService.FreezeProduct(ctx.Request.Context(), req.ProductID); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	pc.auditLog.Record(middleware.Actor(ctx), models.AuditActionProductFrozen, req.ProductID, nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "Product frozen"})
}

// UnfreezeProduct handles POST /products/unfreeze (staff only).
func (pc *PromotionController) UnfreezeProduct(ctx *gin.Context) {
	var req models.FreezeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := pc.promotionService.UnfreezeProduct(ctx.Request.Context(), req.ProductID); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	pc.auditLog.Record(middleware.Actor(ctx), models.AuditActionProductUnfrozen, req.ProductID, nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "Product unfrozen"})
}

// ListFrozen handles GET /products/frozen (staff only).
func (pc *PromotionController) ListFrozen(ctx *gin.Context) {
	frozen, svcErr := pc.promotionService.FrozenProducts(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"frozen": frozen})
}

// GetSettings handles GET /settings.
func (pc *PromotionController) GetSettings(ctx *gin.Context) {
	settings, svcErr := pc.promotionService.GetSettings(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, settings)
}

// UpdateSettings handles POST /settings (staff only).
func (pc *PromotionController) UpdateSettings(ctx *gin.Context) {
	var values map[string]string
	if err := ctx.ShouldBindJSON(&values); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := pc.promotionService.UpdateSettings(ctx.Request.Context(), values); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	keys := make([]interface{}, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	pc.auditLog.Record(middleware.Actor(ctx), models.AuditActionSettingsUpdated, "settings",
		map[string]interface{}{"keys": keys})

	ctx.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}
