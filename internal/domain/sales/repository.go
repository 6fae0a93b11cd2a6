package sales

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists sales. Header and items are written separately so the
// recorder controls their ordering.
type Repository interface {
	CreateSale(ctx context.Context, sale *Sale) error
	CreateItems(ctx context.Context, items []SaleItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindAll(ctx context.Context, filter Filter) ([]Sale, int64, error)
}
