package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdatePricing overwrites sale and cost price of a single product
	UpdatePricing(ctx context.Context, id uuid.UUID, salePrice, costPrice decimal.Decimal) error
}
