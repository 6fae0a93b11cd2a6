package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockBatch is one inbound lot of a product with its own cost and expiry.
// A batch that reaches zero is exhausted but never deleted.
type StockBatch struct {
	shared.BaseEntity
	ProductID   uuid.UUID
	Quantity    decimal.Decimal // kg or units, never negative
	CostPerUnit decimal.Decimal // currency per kg or unit
	ExpiryDate  *time.Time      // optional
	ReceivedAt  time.Time
}

// NewStockBatch creates a new stock batch
func NewStockBatch(
	productID uuid.UUID,
	quantity decimal.Decimal,
	costPerUnit decimal.Decimal,
	expiryDate *time.Time,
	receivedAt time.Time,
) (*StockBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if costPerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost per unit cannot be negative")
	}
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	return &StockBatch{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		Quantity:    quantity,
		CostPerUnit: costPerUnit,
		ExpiryDate:  expiryDate,
		ReceivedAt:  receivedAt,
	}, nil
}

// Deduct reduces the batch quantity, clamping at zero.
// Returns the quantity actually removed.
func (b *StockBatch) Deduct(quantity decimal.Decimal) decimal.Decimal {
	if !quantity.IsPositive() {
		return decimal.Zero
	}
	taken := decimal.Min(b.Quantity, quantity)
	b.Quantity = b.Quantity.Sub(taken)
	b.Touch()
	return taken
}

// Remove returns the quantity left after removing q, floored at zero,
// without mutating the batch.
func (b *StockBatch) Remove(q decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, b.Quantity.Sub(q))
}

// HasStock returns true if the batch has quantity left
func (b *StockBatch) HasStock() bool {
	return b.Quantity.IsPositive()
}

// IsExpired returns true if the expiry date lies before now
func (b *StockBatch) IsExpired(now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(startOfDay(now))
}

// ExpiresWithin reports whether the expiry date falls in [today, today+days].
// Expiry is a calendar date, so the window starts at midnight of now.
func (b *StockBatch) ExpiresWithin(now time.Time, days int) bool {
	if b.ExpiryDate == nil {
		return false
	}
	from := startOfDay(now)
	to := from.AddDate(0, 0, days)
	return !b.ExpiryDate.Before(from) && !b.ExpiryDate.After(to)
}

// TotalValue returns quantity × cost per unit
func (b *StockBatch) TotalValue() decimal.Decimal {
	return b.Quantity.Mul(b.CostPerUnit)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
