package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"smart-trolley-backend/models"
)

// SaleRepository defines the interface for the append-only sales ledger.
// Sales are never updated or deleted.
type SaleRepository interface {
	CreateWithStockDecrement(ctx context.Context, sale *models.Sale) error
	FindAll(ctx context.Context) ([]models.Sale, error)
}

// GormSaleRepository implements SaleRepository using GORM.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository.
func NewGormSaleRepository(db *gorm.DB) SaleRepository {
	return &GormSaleRepository{db: db}
}

// CreateWithStockDecrement persists the sale and decrements stock for each
// snapshotted line in one transaction, clamping stock at zero. Keeping both
// writes in a single transaction means a failed persist never mutates stock.
func (r *GormSaleRepository) CreateWithStockDecrement(ctx context.Context, sale *models.Sale) error {
	itemsJSON, err := json.Marshal(sale.Items)
	if err != nil {
		return err
	}
	sale.ItemsJSON = string(itemsJSON)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		for _, item := range sale.Items {
			err := tx.Model(&models.Product{}).
				Where("id = ?", item.ID).
				UpdateColumn("stock", gorm.Expr("GREATEST(stock - ?, 0)", item.Qty)).
				Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// FindAll returns the full ledger, oldest first, with item snapshots
// decoded. A sale whose snapshot fails to decode is returned with nil items
// rather than failing the read.
func (r *GormSaleRepository) FindAll(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	if err := r.db.WithContext(ctx).Order("id").Find(&sales).Error; err != nil {
		return nil, err
	}

	for i := range sales {
		var items []models.SaleItem
		if err := json.Unmarshal([]byte(sales[i].ItemsJSON), &items); err == nil {
			sales[i].Items = items
		}
	}
	return sales, nil
}
