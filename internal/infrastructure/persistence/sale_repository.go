package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/sales"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements sales.Repository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// CreateSale inserts the sale header without its items
func (r *GormSaleRepository) CreateSale(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Omit("Items").Create(models.SaleModelFromDomain(sale)).Error
}

// CreateItems inserts sale lines in a single statement
func (r *GormSaleRepository) CreateItems(ctx context.Context, items []sales.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.SaleItemModel, len(items))
	for i := range items {
		rows[i] = *models.SaleItemModelFromDomain(&items[i])
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByID finds a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists sale headers matching the filter with the total count
func (r *GormSaleRepository) FindAll(ctx context.Context, filter sales.Filter) ([]sales.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{})
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleModel
	if err := applyPaging(query, filter.Filter, saleSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]sales.Sale, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure GormSaleRepository implements sales.Repository
var _ sales.Repository = (*GormSaleRepository)(nil)
