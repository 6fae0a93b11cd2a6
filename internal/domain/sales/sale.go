package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Sale is a completed checkout. Total always equals the sum of item totals.
type Sale struct {
	shared.BaseEntity
	Total      decimal.Decimal
	ItemsCount int
	Items      []SaleItem
}

// SaleItem is one cart line of a sale
type SaleItem struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	ProductID uuid.UUID
	BatchID   *uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	CreatedAt time.Time
}

// CartItem is the input line for a sale
type CartItem struct {
	ProductID uuid.UUID
	BatchID   *uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	// Total is the line total shown at checkout. When zero it is derived
	// from quantity × unit price.
	Total decimal.Decimal
}

// NewSale builds a sale from cart lines
func NewSale(cart []CartItem) (*Sale, error) {
	if len(cart) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart must contain at least one item")
	}

	sale := &Sale{
		BaseEntity: shared.NewBaseEntity(),
		Total:      decimal.Zero,
		Items:      make([]SaleItem, 0, len(cart)),
	}

	for i, line := range cart {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", fmt.Sprintf("Item %d: product ID cannot be empty", i+1))
		}
		if !line.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Item %d: quantity must be positive", i+1))
		}
		if line.UnitPrice.IsNegative() || line.Total.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Item %d: price cannot be negative", i+1))
		}

		total := line.Total
		if total.IsZero() {
			total = line.Quantity.Mul(line.UnitPrice).Round(2)
		}

		sale.Items = append(sale.Items, SaleItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: line.ProductID,
			BatchID:   line.BatchID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Total:     total,
			CreatedAt: sale.CreatedAt,
		})
		sale.Total = sale.Total.Add(total)
	}
	sale.ItemsCount = len(sale.Items)

	return sale, nil
}

// Filter narrows sale listings
type Filter struct {
	shared.Filter
	From *time.Time
	To   *time.Time
}
