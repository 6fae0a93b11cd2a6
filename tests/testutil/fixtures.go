package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/catalog"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecPtr returns a pointer to Dec(s).
func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// NewBatch builds a stock batch with fixed identity and timestamps.
func NewBatch(id, productID uuid.UUID, qty, cost string, received time.Time, expiry *time.Time) inventory.StockBatch {
	return inventory.StockBatch{
		BaseEntity:  shared.BaseEntity{ID: id, CreatedAt: received, UpdatedAt: received},
		ProductID:   productID,
		Quantity:    Dec(qty),
		CostPerUnit: Dec(cost),
		ExpiryDate:  expiry,
		ReceivedAt:  received,
	}
}

// NewProduct builds an active kg product with the given shelf life.
func NewProduct(id uuid.UUID, name string, shelfLifeDays int) catalog.Product {
	return catalog.Product{
		BaseEntity:    shared.BaseEntity{ID: id, CreatedAt: Day(2024, 1, 1), UpdatedAt: Day(2024, 1, 1)},
		Code:          "P-" + id.String()[:8],
		Name:          name,
		Unit:          catalog.UnitKilogram,
		SalePrice:     decimal.Zero,
		CostPrice:     decimal.Zero,
		ShelfLifeDays: shelfLifeDays,
		Active:        true,
	}
}
