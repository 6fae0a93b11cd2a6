package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate.
type PurchaseOrderModel struct {
	BaseModel
	OrderNumber    string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierName   string                   `gorm:"type:varchar(200);not null"`
	Status         string                   `gorm:"type:varchar(20);not null;default:'draft';index"`
	EstimatedTotal decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	TotalReceived  *decimal.Decimal         `gorm:"type:decimal(18,4)"`
	ReceivedAt     *time.Time
	Notes          string                   `gorm:"type:text"`
	Items          []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *purchasing.PurchaseOrder {
	o := &purchasing.PurchaseOrder{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrderNumber:    m.OrderNumber,
		SupplierName:   m.SupplierName,
		Status:         purchasing.Status(m.Status),
		EstimatedTotal: m.EstimatedTotal,
		TotalReceived:  m.TotalReceived,
		ReceivedAt:     m.ReceivedAt,
		Notes:          m.Notes,
		Items:          make([]purchasing.PurchaseOrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = *item.ToDomain()
	}
	return o
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(o *purchasing.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		OrderNumber:    o.OrderNumber,
		SupplierName:   o.SupplierName,
		Status:         string(o.Status),
		EstimatedTotal: o.EstimatedTotal,
		TotalReceived:  o.TotalReceived,
		ReceivedAt:     o.ReceivedAt,
		Notes:          o.Notes,
		Items:          make([]PurchaseOrderItemModel, len(o.Items)),
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	for i := range o.Items {
		m.Items[i] = *PurchaseOrderItemModelFromDomain(&o.Items[i])
	}
	return m
}

// PurchaseOrderItemModel is the persistence model for a purchase order line.
type PurchaseOrderItemModel struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID        `gorm:"type:uuid;not null"`
	ProductName       string           `gorm:"type:varchar(200);not null"`
	OrderedQuantity   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	EstimatedKg       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	EstimatedUnitCost decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ActualUnitCost    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ReceivedQuantity  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TareTotal         decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Packaging         string           `gorm:"type:varchar(100)"`
	CreatedAt         time.Time        `gorm:"not null"`
	UpdatedAt         time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem.
func (m *PurchaseOrderItemModel) ToDomain() *purchasing.PurchaseOrderItem {
	return &purchasing.PurchaseOrderItem{
		ID:                m.ID,
		OrderID:           m.OrderID,
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		OrderedQuantity:   m.OrderedQuantity,
		EstimatedKg:       m.EstimatedKg,
		EstimatedUnitCost: m.EstimatedUnitCost,
		ActualUnitCost:    m.ActualUnitCost,
		ReceivedQuantity:  m.ReceivedQuantity,
		TareTotal:         m.TareTotal,
		Packaging:         m.Packaging,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// PurchaseOrderItemModelFromDomain creates a new persistence model from a domain PurchaseOrderItem.
func PurchaseOrderItemModelFromDomain(i *purchasing.PurchaseOrderItem) *PurchaseOrderItemModel {
	return &PurchaseOrderItemModel{
		ID:                i.ID,
		OrderID:           i.OrderID,
		ProductID:         i.ProductID,
		ProductName:       i.ProductName,
		OrderedQuantity:   i.OrderedQuantity,
		EstimatedKg:       i.EstimatedKg,
		EstimatedUnitCost: i.EstimatedUnitCost,
		ActualUnitCost:    i.ActualUnitCost,
		ReceivedQuantity:  i.ReceivedQuantity,
		TareTotal:         i.TareTotal,
		Packaging:         i.Packaging,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}
