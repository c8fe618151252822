package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-trolley-backend/audit"
	"smart-trolley-backend/middleware"
	"smart-trolley-backend/models"
	"smart-trolley-backend/services"
)

// CatalogController handles product listing and the staff-only catalog
// mutations. Every mutation records an audit entry; audit failures never
// abort the operation.
type CatalogController struct {
	catalogService services.CatalogService
	auditLog       audit.Log
}

// NewCatalogController creates a new CatalogController.
func NewCatalogController(catalogService services.CatalogService, auditLog audit.Log) *CatalogController {
	return &CatalogController{catalogService: catalogService, auditLog: auditLog}
}

// ListProducts handles GET /products.
func (cc *CatalogController) ListProducts(ctx *gin.Context) {
	products, svcErr := cc.catalogService.ListProducts(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, products)
}

// CreateProduct handles POST /products (staff only).
func (cc *CatalogController) CreateProduct(ctx *gin.Context) {
	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := cc.catalogService.CreateProduct(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	cc.auditLog.Record(middleware.Actor(ctx), models.AuditActionProductAdded, product.ID,
		map[string]interface{}{"name": product.Name})

	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct handles PATCH /products/:id (staff only).
func (cc *CatalogController) UpdateProduct(ctx *gin.Context) {
	id := ctx.Param("id")

	var update models.ProductUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := cc.catalogService.UpdateProduct(ctx.Request.Context(), id, &update); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	cc.auditLog.Record(middleware.Actor(ctx), models.AuditActionProductUpdated, id, update.Fields())

	ctx.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct handles DELETE /products/:id (staff only).
func (cc *CatalogController) DeleteProduct(ctx *gin.Context) {
	id := ctx.Param("id")

	if svcErr := cc.catalogService.DeleteProduct(ctx.Request.Context(), id); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	cc.auditLog.Record(middleware.Actor(ctx), models.AuditActionProductDeleted, id, nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// AdjustStock handles POST /products/:id/stock (staff only).
func (cc *CatalogController) AdjustStock(ctx *gin.Context) {
	id := ctx.Param("id")

	var req models.AdjustStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	stock, svcErr := cc.catalogService.AdjustStock(ctx.Request.Context(), id, req.Delta)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	cc.auditLog.Record(middleware.Actor(ctx), models.AuditActionStockAdjusted, id,
		map[string]interface{}{"delta": req.Delta, "stock": stock})

	ctx.JSON(http.StatusOK, gin.H{"message": "Stock adjusted", "stock": stock})
}
