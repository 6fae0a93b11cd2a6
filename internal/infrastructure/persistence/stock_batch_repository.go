package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockBatchRepository implements StockBatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindByID finds a stock batch by its ID
func (r *GormStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	var model models.StockBatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAvailable returns batches with stock, earliest expiry first
func (r *GormStockBatchRepository) FindAvailable(ctx context.Context) ([]inventory.StockBatch, error) {
	var rows []models.StockBatchModel
	if err := r.db.WithContext(ctx).
		Where("quantity > 0").
		Order("CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END ASC, expiry_date ASC, received_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockBatches(rows), nil
}

// FindByProduct returns all batches of a product, oldest received first
func (r *GormStockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var rows []models.StockBatchModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("received_at ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockBatches(rows), nil
}

// Create inserts a new batch
func (r *GormStockBatchRepository) Create(ctx context.Context, batch *inventory.StockBatch) error {
	return r.db.WithContext(ctx).Create(models.StockBatchModelFromDomain(batch)).Error
}

// SetQuantity overwrites quantity with an absolute value
func (r *GormStockBatchRepository) SetQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.StockBatchModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DecrementQuantity runs quantity = quantity - amount WHERE quantity >= amount.
// The condition is evaluated by the database, so two concurrent callers can
// never drive a batch below zero or lose each other's update.
func (r *GormStockBatchRepository) DecrementQuantity(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockBatchModel{}).
		Where("id = ? AND quantity >= ?", id, amount).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func toStockBatches(rows []models.StockBatchModel) []inventory.StockBatch {
	out := make([]inventory.StockBatch, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormStockBatchRepository implements StockBatchRepository
var _ inventory.StockBatchRepository = (*GormStockBatchRepository)(nil)
