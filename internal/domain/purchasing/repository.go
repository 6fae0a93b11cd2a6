package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID loads an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindAll lists orders, optionally filtered by status
	FindAll(ctx context.Context, filter shared.Filter, status *Status) ([]PurchaseOrder, int64, error)

	// Save creates or updates the order header and its items
	Save(ctx context.Context, order *PurchaseOrder) error

	// UpdateItemReceipt writes received quantity and actual unit cost of one item
	UpdateItemReceipt(ctx context.Context, itemID uuid.UUID, receivedQty, actualUnitCost decimal.Decimal) error

	// Close writes the closing fields of the order header
	Close(ctx context.Context, order *PurchaseOrder) error
}
