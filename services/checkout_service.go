package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"smart-trolley-backend/models"
	"smart-trolley-backend/repository"
)

// CheckoutService converts the active cart into an immutable sale record.
type CheckoutService interface {
	Checkout(ctx context.Context, discountPercent float64) (*models.CheckoutResponse, *ServiceError)
	SalesHistory(ctx context.Context) ([]models.Sale, *ServiceError)
}

type checkoutServiceImpl struct {
	cart     CartService
	saleRepo repository.SaleRepository
	logger   *zap.Logger
	nowFunc  func() time.Time
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(cart CartService, saleRepo repository.SaleRepository, logger *zap.Logger) CheckoutService {
	return &checkoutServiceImpl{
		cart:     cart,
		saleRepo: saleRepo,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Checkout snapshots the cart, persists the sale and decrements stock in
// one transaction, then clears the cart. A persistence failure leaves cart
// and stock untouched.
func (s *checkoutServiceImpl) Checkout(ctx context.Context, discountPercent float64) (*models.CheckoutResponse, *ServiceError) {
	if discountPercent < 0 || discountPercent > 100 {
		return nil, &ServiceError{StatusCode: 400, Message: "Discount percent must be between 0 and 100"}
	}

	var sale *models.Sale
	svcErr := s.cart.RunCheckout(ctx, func(view *models.CartView) error {
		sale = s.buildSale(view, discountPercent)
		return s.saleRepo.CreateWithStockDecrement(ctx, sale)
	})
	if svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Checkout recorded",
		zap.Uint("sale_id", sale.ID),
		zap.Float64("total", sale.Total),
		zap.Float64("discount_percent", discountPercent),
	)
	return &models.CheckoutResponse{Sale: sale, DiscountApplied: discountPercent}, nil
}

// buildSale snapshots the cart view into denormalized sale lines, ordered
// by product id for a stable items sequence.
func (s *checkoutServiceImpl) buildSale(view *models.CartView, discountPercent float64) *models.Sale {
	ids := make([]string, 0, len(view.Items))
	for id := range view.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]models.SaleItem, 0, len(ids))
	for _, id := range ids {
		item := view.Items[id]
		items = append(items, models.SaleItem{
			ID:         item.ID,
			Name:       item.Name,
			Unit:       item.Unit,
			Price:      item.Price,
			Discount:   item.Discount,
			FinalPrice: item.FinalPrice,
			Category:   item.Category,
			Qty:        item.Qty,
		})
	}

	return &models.Sale{
		Timestamp: s.nowFunc(),
		Total:     models.Round2(view.Total * (1 - discountPercent/100)),
		Items:     items,
	}
}

// SalesHistory returns the full append-only ledger.
func (s *checkoutServiceImpl) SalesHistory(ctx context.Context) ([]models.Sale, *ServiceError) {
	sales, err := s.saleRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load sales history", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load sales history"}
	}
	return sales, nil
}
