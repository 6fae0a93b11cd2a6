package catalog

import (
	"strings"
	"time"

	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Unit is the unit a product is sold and stocked in
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitPiece    Unit = "un"
)

// IsValid reports whether the unit is known
func (u Unit) IsValid() bool {
	return u == UnitKilogram || u == UnitPiece
}

// Product is a sellable item. SalePrice and CostPrice are rewritten every
// time a purchase order containing the product is closed.
type Product struct {
	shared.BaseEntity
	Code          string
	Name          string
	Unit          Unit
	SalePrice     decimal.Decimal
	CostPrice     decimal.Decimal
	ShelfLifeDays int
	Active        bool
}

// NewProduct creates a new active product with zero prices
func NewProduct(code, name string, unit Unit, shelfLifeDays int) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code must have between 1 and 50 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name must have between 1 and 200 characters")
	}
	if !unit.IsValid() {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit must be kg or un")
	}
	if shelfLifeDays < 0 {
		return nil, shared.NewDomainError("INVALID_SHELF_LIFE", "Shelf life cannot be negative")
	}

	return &Product{
		BaseEntity:    shared.NewBaseEntity(),
		Code:          strings.ToUpper(code),
		Name:          name,
		Unit:          unit,
		SalePrice:     decimal.Zero,
		CostPrice:     decimal.Zero,
		ShelfLifeDays: shelfLifeDays,
		Active:        true,
	}, nil
}

// UpdatePricing sets the sale and purchase cost prices
func (p *Product) UpdatePricing(salePrice, costPrice decimal.Decimal) error {
	if salePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}
	if costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	p.SalePrice = salePrice
	p.CostPrice = costPrice
	p.Touch()
	return nil
}

// ExpiryFrom returns the expiry date of stock received at the given time.
// Products without a shelf life never expire.
func (p *Product) ExpiryFrom(received time.Time) *time.Time {
	if p.ShelfLifeDays <= 0 {
		return nil
	}
	expiry := received.AddDate(0, 0, p.ShelfLifeDays)
	return &expiry
}

// Margin returns the current margin percentage over sale price
func (p *Product) Margin() decimal.Decimal {
	if p.SalePrice.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(p.CostPrice.Div(p.SalePrice)).Mul(decimal.NewFromInt(100))
}
