package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-trolley-backend/models"
	"smart-trolley-backend/repository"
)

// CatalogService defines the interface for product catalog operations.
type CatalogService interface {
	GetProduct(ctx context.Context, id string) (*models.Product, *ServiceError)
	ListProducts(ctx context.Context) (map[string]models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id string, update *models.ProductUpdate) *ServiceError
	DeleteProduct(ctx context.Context, id string) *ServiceError
	AdjustStock(ctx context.Context, id string, delta int) (int, *ServiceError)
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
	cart        CartService
	logger      *zap.Logger
}

// NewCatalogService creates a new CatalogService. The cart service is
// needed so deleting a product also purges its cart line; going through
// the service keeps the purge under the cart lock.
func NewCatalogService(
	productRepo repository.ProductRepository,
	cart CartService,
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
		cart:        cart,
		logger:      logger,
	}
}

// validateDiscount enforces the [0, 90] bound on every write path.
func validateDiscount(discount float64) *ServiceError {
	if discount < 0 || discount > 90 {
		return &ServiceError{StatusCode: 400, Message: "Discount must be between 0 and 90"}
	}
	return nil
}

// GetProduct retrieves a product by its tag id.
func (s *catalogServiceImpl) GetProduct(ctx context.Context, id string) (*models.Product, *ServiceError) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to load product", zap.String("id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load product"}
	}
	return product, nil
}

// ListProducts returns the full catalog keyed by product id.
func (s *catalogServiceImpl) ListProducts(ctx context.Context) (map[string]models.Product, *ServiceError) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to list products"}
	}

	result := make(map[string]models.Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// CreateProduct adds a catalog item; duplicate ids are a conflict, not an
// overwrite.
func (s *catalogServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	if svcErr := validateDiscount(req.Discount); svcErr != nil {
		return nil, svcErr
	}
	if req.Price < 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Price must not be negative"}
	}
	if req.Stock < 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Stock must not be negative"}
	}

	product := &models.Product{
		ID:                   req.ID,
		Name:                 req.Name,
		Unit:                 req.Unit,
		Price:                req.Price,
		Stock:                req.Stock,
		Category:             req.Category,
		Image:                req.Image,
		Discount:             req.Discount,
		PromotionDescription: req.PromotionDescription,
		PromotionExpiry:      req.PromotionExpiry,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, &ServiceError{StatusCode: 409, Message: "Product id already exists"}
		}
		s.logger.Error("Failed to create product", zap.String("id", req.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}

	s.logger.Info("Product created", zap.String("id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct applies only the supplied fields.
func (s *catalogServiceImpl) UpdateProduct(ctx context.Context, id string, update *models.ProductUpdate) *ServiceError {
	if update.Discount != nil {
		if svcErr := validateDiscount(*update.Discount); svcErr != nil {
			return svcErr
		}
	}
	if update.Price != nil && *update.Price < 0 {
		return &ServiceError{StatusCode: 400, Message: "Price must not be negative"}
	}
	if update.Stock != nil && *update.Stock < 0 {
		return &ServiceError{StatusCode: 400, Message: "Stock must not be negative"}
	}

	fields := update.Fields()
	if len(fields) == 0 {
		return &ServiceError{StatusCode: 400, Message: "No fields to update"}
	}

	if err := s.productRepo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to update product", zap.String("id", id), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to update product"}
	}
	return nil
}

// DeleteProduct removes a product and purges any cart line referencing it.
// Historical sales keep their own denormalized snapshot, so deletion never
// rewrites the ledger.
func (s *catalogServiceImpl) DeleteProduct(ctx context.Context, id string) *ServiceError {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to delete product", zap.String("id", id), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete product"}
	}

	if svcErr := s.cart.RemoveProduct(ctx, id); svcErr != nil {
		// The product is gone; a stale cart line is dropped defensively at
		// view time, so this is logged rather than surfaced.
		s.logger.Warn("Failed to purge cart line for deleted product",
			zap.String("id", id), zap.String("reason", svcErr.Message))
	}

	s.logger.Info("Product deleted", zap.String("id", id))
	return nil
}

// AdjustStock applies a manual stock delta, clamped at zero, and returns
// the resulting stock level.
func (s *catalogServiceImpl) AdjustStock(ctx context.Context, id string, delta int) (int, *ServiceError) {
	stock, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to adjust stock", zap.String("id", id), zap.Error(err))
		return 0, &ServiceError{StatusCode: 500, Message: "Failed to adjust stock"}
	}
	return stock, nil
}
