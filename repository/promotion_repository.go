package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"smart-trolley-backend/models"
)

// PromotionRepository defines the interface for campaign data access.
type PromotionRepository interface {
	Create(ctx context.Context, promotion *models.Promotion) error
	Delete(ctx context.Context, id uint) error
	FindAll(ctx context.Context) ([]models.Promotion, error)
	TouchLastShown(ctx context.Context, id uint, shownAt time.Time) error
}

// GormPromotionRepository implements PromotionRepository using GORM.
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository.
func NewGormPromotionRepository(db *gorm.DB) PromotionRepository {
	return &GormPromotionRepository{db: db}
}

// Create inserts a new campaign.
func (r *GormPromotionRepository) Create(ctx context.Context, promotion *models.Promotion) error {
	return r.db.WithContext(ctx).Create(promotion).Error
}

// Delete removes a campaign.
func (r *GormPromotionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Promotion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindAll retrieves all campaigns, newest first.
func (r *GormPromotionRepository) FindAll(ctx context.Context) ([]models.Promotion, error) {
	var promotions []models.Promotion
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// TouchLastShown stamps the rotation timestamp on a banner.
func (r *GormPromotionRepository) TouchLastShown(ctx context.Context, id uint, shownAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Where("id = ?", id).
		UpdateColumn("last_shown", shownAt).
		Error
}
