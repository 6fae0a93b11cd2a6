package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale entity.
type SaleModel struct {
	BaseModel
	Total      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ItemsCount int             `gorm:"not null"`
	Items      []SaleItemModel `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *sales.Sale {
	s := &sales.Sale{
		BaseEntity: m.BaseModel.ToDomain(),
		Total:      m.Total,
		ItemsCount: m.ItemsCount,
		Items:      make([]sales.SaleItem, len(m.Items)),
	}
	for i, item := range m.Items {
		s.Items[i] = *item.ToDomain()
	}
	return s
}

// SaleModelFromDomain creates the header model only. Items are written
// separately through SaleItemModelFromDomain.
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{
		Total:      s.Total,
		ItemsCount: s.ItemsCount,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// SaleItemModel is the persistence model for a sale line.
type SaleItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID   *uuid.UUID      `gorm:"type:uuid"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() *sales.SaleItem {
	return &sales.SaleItem{
		ID:        m.ID,
		SaleID:    m.SaleID,
		ProductID: m.ProductID,
		BatchID:   m.BatchID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Total:     m.Total,
		CreatedAt: m.CreatedAt,
	}
}

// SaleItemModelFromDomain creates a new persistence model from a domain SaleItem.
func SaleItemModelFromDomain(i *sales.SaleItem) *SaleItemModel {
	return &SaleItemModel{
		ID:        i.ID,
		SaleID:    i.SaleID,
		ProductID: i.ProductID,
		BatchID:   i.BatchID,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		Total:     i.Total,
		CreatedAt: i.CreatedAt,
	}
}
