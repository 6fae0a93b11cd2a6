package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBatchRepository defines the interface for stock batch persistence
type StockBatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)

	// FindAvailable returns every batch with quantity > 0,
	// ordered by expiry ascending with no-expiry batches last
	FindAvailable(ctx context.Context) ([]StockBatch, error)

	// FindByProduct returns all batches of a product, including exhausted ones,
	// oldest received first
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockBatch, error)

	// Create inserts a new batch
	Create(ctx context.Context, batch *StockBatch) error

	// SetQuantity overwrites the batch quantity with an absolute value
	SetQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error

	// DecrementQuantity subtracts amount only if the batch still holds at least
	// that much. Returns false when the condition did not match.
	DecrementQuantity(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
}
