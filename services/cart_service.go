package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-trolley-backend/models"
	"smart-trolley-backend/repository"
)

// CartService defines the interface for the single active cart session.
type CartService interface {
	Scan(ctx context.Context, productID string) (*models.CartView, *ServiceError)
	Unscan(ctx context.Context, productID string) (*models.CartView, *ServiceError)
	View(ctx context.Context) (*models.CartView, *ServiceError)
	Clear(ctx context.Context) *ServiceError

	// RemoveProduct drops the line for a product regardless of quantity.
	// Used when the product leaves the catalog; an absent line is a no-op.
	RemoveProduct(ctx context.Context, productID string) *ServiceError

	// RunCheckout computes the cart view while holding the cart lock,
	// invokes commit with it, and clears the cart and resets the heartbeat
	// only when commit succeeds. A failed commit leaves the cart untouched.
	RunCheckout(ctx context.Context, commit func(view *models.CartView) error) *ServiceError
}

type cartServiceImpl struct {
	// mu serializes every read-modify-write on the single cart so
	// concurrent scans of the same product cannot lose updates.
	mu sync.Mutex

	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	settingsRepo repository.SettingsRepository
	heartbeat    *HeartbeatTracker
	logger       *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	settingsRepo repository.SettingsRepository,
	heartbeat *HeartbeatTracker,
	logger *zap.Logger,
) CartService {
	return &cartServiceImpl{
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		settingsRepo: settingsRepo,
		heartbeat:    heartbeat,
		logger:       logger,
	}
}

// Scan adds one unit of a product to the cart, creating the line at qty=1.
// Unknown products are a 404, frozen products a 403.
func (s *cartServiceImpl) Scan(ctx context.Context, productID string) (*models.CartView, *ServiceError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to look up scanned product", zap.String("id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to look up product"}
	}

	frozen, svcErr := s.isFrozen(ctx, productID)
	if svcErr != nil {
		return nil, svcErr
	}
	if frozen {
		return nil, &ServiceError{StatusCode: 403, Message: "Product is frozen by staff"}
	}

	cart, svcErr := s.loadCart(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	if idx := cart.Line(product.ID); idx >= 0 {
		cart.Lines[idx].Quantity++
	} else {
		cart.Lines = append(cart.Lines, models.CartLine{ProductID: product.ID, Quantity: 1})
	}

	return s.saveAndObserve(ctx, cart)
}

// Unscan removes one unit, dropping the line entirely when it would reach
// zero.
func (s *cartServiceImpl) Unscan(ctx context.Context, productID string) (*models.CartView, *ServiceError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, svcErr := s.loadCart(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	idx := cart.Line(productID)
	if idx < 0 {
		return nil, &ServiceError{StatusCode: 404, Message: "Item not in cart"}
	}

	if cart.Lines[idx].Quantity > 1 {
		cart.Lines[idx].Quantity--
	} else {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	}

	return s.saveAndObserve(ctx, cart)
}

// View returns the computed cart. Polling the cart is itself a liveness
// signal, so reads also touch the heartbeat.
func (s *cartServiceImpl) View(ctx context.Context) (*models.CartView, *ServiceError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, svcErr := s.loadCart(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	view, svcErr := s.buildView(ctx, cart)
	if svcErr != nil {
		return nil, svcErr
	}
	s.heartbeat.Touch(view)
	return view, nil
}

// Clear empties the cart unconditionally and resets the heartbeat.
func (s *cartServiceImpl) Clear(ctx context.Context) *ServiceError {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cartRepo.DeleteCart(ctx); err != nil {
		s.logger.Error("Failed to clear cart", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to clear cart"}
	}
	s.heartbeat.Reset()
	return nil
}

// RemoveProduct drops the whole line for a product under the cart lock, so
// a scan cannot interleave with the read-modify-write. The heartbeat is not
// touched: this is a staff-side mutation, not a customer observation.
func (s *cartServiceImpl) RemoveProduct(ctx context.Context, productID string) *ServiceError {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, svcErr := s.loadCart(ctx)
	if svcErr != nil {
		return svcErr
	}

	idx := cart.Line(productID)
	if idx < 0 {
		return nil
	}
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)

	if err := s.cartRepo.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to save cart"}
	}
	return nil
}

// RunCheckout holds the cart lock across snapshot, commit and clear so no
// concurrent scan can slip between the snapshot and the wipe.
func (s *cartServiceImpl) RunCheckout(ctx context.Context, commit func(view *models.CartView) error) *ServiceError {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, svcErr := s.loadCart(ctx)
	if svcErr != nil {
		return svcErr
	}
	if len(cart.Lines) == 0 {
		return &ServiceError{StatusCode: 400, Message: "Cart is empty"}
	}

	view, svcErr := s.buildView(ctx, cart)
	if svcErr != nil {
		return svcErr
	}
	if len(view.Items) == 0 {
		return &ServiceError{StatusCode: 400, Message: "Cart is empty"}
	}

	if err := commit(view); err != nil {
		s.logger.Error("Checkout commit failed, cart left intact", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to record sale"}
	}

	if err := s.cartRepo.DeleteCart(ctx); err != nil {
		// The sale is durable; a stale cart is recoverable by staff reset.
		s.logger.Error("Failed to clear cart after checkout", zap.Error(err))
	}
	s.heartbeat.Reset()
	return nil
}

func (s *cartServiceImpl) loadCart(ctx context.Context) (*models.Cart, *ServiceError) {
	cart, err := s.cartRepo.GetCart(ctx)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load cart"}
	}
	if cart == nil {
		cart = &models.Cart{Lines: []models.CartLine{}}
	}
	return cart, nil
}

func (s *cartServiceImpl) saveAndObserve(ctx context.Context, cart *models.Cart) (*models.CartView, *ServiceError) {
	if err := s.cartRepo.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to save cart"}
	}

	view, svcErr := s.buildView(ctx, cart)
	if svcErr != nil {
		return nil, svcErr
	}
	s.heartbeat.Touch(view)
	return view, nil
}

// buildView joins cart lines with current catalog pricing. Lines whose
// product no longer exists are dropped defensively.
func (s *cartServiceImpl) buildView(ctx context.Context, cart *models.Cart) (*models.CartView, *ServiceError) {
	view := &models.CartView{Items: map[string]models.CartViewItem{}}

	for _, line := range cart.Lines {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			s.logger.Error("Failed to price cart line", zap.String("id", line.ProductID), zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "Failed to compute cart"}
		}

		finalPrice := product.FinalPrice()
		view.Items[product.ID] = models.CartViewItem{
			ID:         product.ID,
			Name:       product.Name,
			Unit:       product.Unit,
			Price:      product.Price,
			Discount:   product.Discount,
			FinalPrice: finalPrice,
			Category:   product.Category,
			Image:      product.Image,
			Qty:        line.Quantity,
		}
		view.Total += finalPrice * float64(line.Quantity)
	}

	view.Total = models.Round2(view.Total)
	return view, nil
}

// isFrozen consults the emergency block list kept in settings.
func (s *cartServiceImpl) isFrozen(ctx context.Context, productID string) (bool, *ServiceError) {
	value, err := s.settingsRepo.Get(ctx, models.FrozenProductsKey)
	if err != nil {
		s.logger.Error("Failed to read frozen product list", zap.Error(err))
		return false, &ServiceError{StatusCode: 500, Message: "Failed to read frozen products"}
	}
	if value == "" {
		return false, nil
	}

	var frozen []string
	if err := json.Unmarshal([]byte(value), &frozen); err != nil {
		s.logger.Warn("Malformed frozen product list, treating as empty", zap.Error(err))
		return false, nil
	}
	for _, id := range frozen {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}
