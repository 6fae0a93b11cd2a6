package purchasing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the status of a purchase order
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSent || target == StatusCancelled
	case StatusSent:
		return target == StatusReceived || target == StatusCancelled
	case StatusReceived, StatusCancelled:
		return false
	}
	return false
}

// CanReceive returns true if the order is waiting for goods
func (s Status) CanReceive() bool {
	return s == StatusSent
}

// PurchaseOrderItem is a line of a purchase order.
// ReceivedQuantity and ActualUnitCost stay nil until the order is closed.
type PurchaseOrderItem struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	OrderedQuantity   decimal.Decimal // volumes ordered
	EstimatedKg       decimal.Decimal // gross kg expected for the ordered volumes
	EstimatedUnitCost decimal.Decimal // per volume
	ActualUnitCost    *decimal.Decimal
	ReceivedQuantity  *decimal.Decimal
	TareTotal         decimal.Decimal
	Packaging         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(orderID, productID uuid.UUID, productName string, orderedQty, estimatedKg, unitCost, tare decimal.Decimal, packaging string) (*PurchaseOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !orderedQty.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if estimatedKg.IsNegative() || tare.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Weights cannot be negative")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:                uuid.New(),
		OrderID:           orderID,
		ProductID:         productID,
		ProductName:       productName,
		OrderedQuantity:   orderedQty,
		EstimatedKg:       estimatedKg,
		EstimatedUnitCost: unitCost,
		TareTotal:         tare,
		Packaging:         packaging,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// RecordReceipt stores what actually arrived
func (i *PurchaseOrderItem) RecordReceipt(receivedQty, actualUnitCost decimal.Decimal) error {
	if receivedQty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot be negative")
	}
	if actualUnitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	i.ReceivedQuantity = &receivedQty
	i.ActualUnitCost = &actualUnitCost
	i.UpdatedAt = time.Now()
	return nil
}

// PurchaseOrder is an order placed with a supplier
type PurchaseOrder struct {
	shared.BaseEntity
	OrderNumber    string
	SupplierName   string
	Status         Status
	Items          []PurchaseOrderItem
	EstimatedTotal decimal.Decimal
	TotalReceived  *decimal.Decimal
	ReceivedAt     *time.Time
	Notes          string
}

// NewPurchaseOrder creates a draft purchase order
func NewPurchaseOrder(orderNumber, supplierName string) (*PurchaseOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if strings.TrimSpace(supplierName) == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier name cannot be empty")
	}
	return &PurchaseOrder{
		BaseEntity:     shared.NewBaseEntity(),
		OrderNumber:    orderNumber,
		SupplierName:   supplierName,
		Status:         StatusDraft,
		Items:          make([]PurchaseOrderItem, 0),
		EstimatedTotal: decimal.Zero,
	}, nil
}

// AddItem appends a line to a draft order
func (o *PurchaseOrder) AddItem(productID uuid.UUID, productName string, orderedQty, estimatedKg, unitCost, tare decimal.Decimal, packaging string) (*PurchaseOrderItem, error) {
	if o.Status != StatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Items can only be added to draft orders")
	}
	item, err := NewPurchaseOrderItem(o.ID, productID, productName, orderedQty, estimatedKg, unitCost, tare, packaging)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.EstimatedTotal = o.EstimatedTotal.Add(orderedQty.Mul(unitCost))
	o.Touch()
	return item, nil
}

// Send marks the order as sent to the supplier
func (o *PurchaseOrder) Send() error {
	if !o.Status.CanTransitionTo(StatusSent) {
		return shared.NewDomainError("INVALID_STATE", "Cannot send order in "+string(o.Status)+" status")
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot send an order without items")
	}
	o.Status = StatusSent
	o.Touch()
	return nil
}

// Close records the receiving result. Only sent orders can be closed.
func (o *PurchaseOrder) Close(totalReceived decimal.Decimal, notes string, at time.Time) error {
	if !o.Status.CanTransitionTo(StatusReceived) {
		return shared.NewDomainError("INVALID_STATE", "Cannot close order in "+string(o.Status)+" status")
	}
	o.Status = StatusReceived
	o.TotalReceived = &totalReceived
	o.ReceivedAt = &at
	o.Notes = joinNotes(o.Notes, notes)
	o.Touch()
	return nil
}

// Cancel cancels a draft or sent order
func (o *PurchaseOrder) Cancel() error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel order in "+string(o.Status)+" status")
	}
	o.Status = StatusCancelled
	o.Touch()
	return nil
}

// Item returns the line with the given id
func (o *PurchaseOrder) Item(id uuid.UUID) *PurchaseOrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

func joinNotes(existing, added string) string {
	existing, added = strings.TrimSpace(existing), strings.TrimSpace(added)
	switch {
	case existing == "":
		return added
	case added == "":
		return existing
	default:
		return existing + " | " + added
	}
}
