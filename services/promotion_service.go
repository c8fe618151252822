package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-trolley-backend/models"
	"smart-trolley-backend/repository"
)

// bannerRotationWindow is the wall-clock slot width for banner rotation.
const bannerRotationWindow = 30 * time.Minute

// PromotionService manages campaigns, the emergency freeze list and the
// store-wide settings.
type PromotionService interface {
	AddPromotion(ctx context.Context, req *models.AddPromotionRequest) (*models.Promotion, *ServiceError)
	DeletePromotion(ctx context.Context, id uint) *ServiceError
	ListPromotions(ctx context.Context) ([]models.Promotion, *ServiceError)
	Current(ctx context.Context) (*models.CurrentPromotions, *ServiceError)

	FreezeProduct(ctx context.Context, productID string) *ServiceError
	UnfreezeProduct(ctx context.Context, productID string) *ServiceError
	FrozenProducts(ctx context.Context) ([]string, *ServiceError)

	GetSettings(ctx context.Context) (map[string]string, *ServiceError)
	UpdateSettings(ctx context.Context, values map[string]string) *ServiceError
}

type promotionServiceImpl struct {
	promoRepo    repository.PromotionRepository
	settingsRepo repository.SettingsRepository
	logger       *zap.Logger
	nowFunc      func() time.Time
}

// NewPromotionService creates a new PromotionService.
func NewPromotionService(
	promoRepo repository.PromotionRepository,
	settingsRepo repository.SettingsRepository,
	logger *zap.Logger,
) PromotionService {
	return &promotionServiceImpl{
		promoRepo:    promoRepo,
		settingsRepo: settingsRepo,
		logger:       logger,
		nowFunc:      time.Now,
	}
}

// AddPromotion creates a campaign with the opaque content payload stored
// verbatim.
func (s *promotionServiceImpl) AddPromotion(ctx context.Context, req *models.AddPromotionRequest) (*models.Promotion, *ServiceError) {
	promotion := &models.Promotion{
		Type:    req.Type,
		Title:   req.Title,
		Content: string(req.Content),
		Active:  true,
	}

	if err := s.promoRepo.Create(ctx, promotion); err != nil {
		s.logger.Error("Failed to create promotion", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create promotion"}
	}

	s.logger.Info("Promotion created",
		zap.Uint("id", promotion.ID), zap.String("type", string(promotion.Type)))
	return promotion, nil
}

// DeletePromotion removes a campaign.
func (s *promotionServiceImpl) DeletePromotion(ctx context.Context, id uint) *ServiceError {
	if err := s.promoRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Promotion not found"}
		}
		s.logger.Error("Failed to delete promotion", zap.Uint("id", id), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete promotion"}
	}
	return nil
}

// ListPromotions returns all campaigns, newest first.
func (s *promotionServiceImpl) ListPromotions(ctx context.Context) ([]models.Promotion, *ServiceError) {
	promotions, err := s.promoRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list promotions", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to list promotions"}
	}
	return promotions, nil
}

// Current selects what the trolley should display right now: the most
// recently created active spin wheel always wins; active banners rotate on
// a 30-minute wall-clock slot, ordered by last_shown ascending with
// never-shown banners first. Selecting a banner stamps its last_shown.
func (s *promotionServiceImpl) Current(ctx context.Context) (*models.CurrentPromotions, *ServiceError) {
	promotions, err := s.promoRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load promotions", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load promotions"}
	}

	var spinWheels, banners []models.Promotion
	for _, p := range promotions {
		if !p.Active {
			continue
		}
		switch p.Type {
		case models.PromotionTypeSpinWheel:
			spinWheels = append(spinWheels, p)
		case models.PromotionTypeBanner:
			banners = append(banners, p)
		}
	}

	result := &models.CurrentPromotions{}

	if len(spinWheels) > 0 {
		sort.Slice(spinWheels, func(i, j int) bool {
			return spinWheels[i].CreatedAt.After(spinWheels[j].CreatedAt)
		})
		result.SpinWheel = &spinWheels[0]
	}

	if len(banners) > 0 {
		sort.Slice(banners, func(i, j int) bool {
			ti, tj := bannerLastShown(banners[i]), bannerLastShown(banners[j])
			if ti.Equal(tj) {
				return banners[i].ID < banners[j].ID
			}
			return ti.Before(tj)
		})

		now := s.nowFunc()
		slot := int(now.Unix()/int64(bannerRotationWindow/time.Second)) % len(banners)
		selected := banners[slot]

		if err := s.promoRepo.TouchLastShown(ctx, selected.ID, now); err != nil {
			// Rotation bookkeeping; a read must never fail on it.
			s.logger.Warn("Failed to stamp banner last_shown",
				zap.Uint("id", selected.ID), zap.Error(err))
		}
		result.Banner = &selected
	}

	return result, nil
}

func bannerLastShown(p models.Promotion) time.Time {
	if p.LastShown == nil {
		return time.Time{}
	}
	return *p.LastShown
}

// FreezeProduct adds a product to the emergency block list. Idempotent.
func (s *promotionServiceImpl) FreezeProduct(ctx context.Context, productID string) *ServiceError {
	return s.mutateFrozen(ctx, productID, true)
}

// UnfreezeProduct removes a product from the block list. Idempotent.
func (s *promotionServiceImpl) UnfreezeProduct(ctx context.Context, productID string) *ServiceError {
	return s.mutateFrozen(ctx, productID, false)
}

// FrozenProducts returns the current block list.
func (s *promotionServiceImpl) FrozenProducts(ctx context.Context) ([]string, *ServiceError) {
	frozen, svcErr := s.loadFrozen(ctx)
	if svcErr != nil {
		return nil, svcErr
	}
	return frozen, nil
}

func (s *promotionServiceImpl) mutateFrozen(ctx context.Context, productID string, freeze bool) *ServiceError {
	frozen, svcErr := s.loadFrozen(ctx)
	if svcErr != nil {
		return svcErr
	}

	next := make([]string, 0, len(frozen)+1)
	present := false
	for _, id := range frozen {
		if id == productID {
			present = true
			if !freeze {
				continue
			}
		}
		next = append(next, id)
	}
	if freeze && !present {
		next = append(next, productID)
	}
	sort.Strings(next)

	value, err := json.Marshal(next)
	if err != nil {
		return &ServiceError{StatusCode: 500, Message: "Failed to encode frozen products"}
	}
	if err := s.settingsRepo.Set(ctx, models.FrozenProductsKey, string(value)); err != nil {
		s.logger.Error("Failed to persist frozen products", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to update frozen products"}
	}
	return nil
}

func (s *promotionServiceImpl) loadFrozen(ctx context.Context) ([]string, *ServiceError) {
	value, err := s.settingsRepo.Get(ctx, models.FrozenProductsKey)
	if err != nil {
		s.logger.Error("Failed to read frozen products", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to read frozen products"}
	}
	if value == "" {
		return []string{}, nil
	}

	var frozen []string
	if err := json.Unmarshal([]byte(value), &frozen); err != nil {
		s.logger.Warn("Malformed frozen product list, treating as empty", zap.Error(err))
		return []string{}, nil
	}
	return frozen, nil
}

// GetSettings returns the full settings map, frozen list excluded (it has
// its own endpoints).
func (s *promotionServiceImpl) GetSettings(ctx context.Context) (map[string]string, *ServiceError) {
	settings, err := s.settingsRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load settings", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load settings"}
	}
	delete(settings, models.FrozenProductsKey)
	return settings, nil
}

// UpdateSettings upserts only the supplied keys.
func (s *promotionServiceImpl) UpdateSettings(ctx context.Context, values map[string]string) *ServiceError {
	if len(values) == 0 {
		return &ServiceError{StatusCode: 400, Message: "No settings to update"}
	}
	if _, reserved := values[models.FrozenProductsKey]; reserved {
		return &ServiceError{StatusCode: 400, Message: "Frozen products are managed via freeze endpoints"}
	}

	for key, value := range values {
		if err := s.settingsRepo.Set(ctx, key, value); err != nil {
			s.logger.Error("Failed to update setting", zap.String("key", key), zap.Error(err))
			return &ServiceError{StatusCode: 500, Message: "Failed to update settings"}
		}
	}
	return nil
}
