package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockBatchModel is the persistence model for the StockBatch entity.
type StockBatchModel struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpiryDate  *time.Time      `gorm:"type:date;index"`
	ReceivedAt  time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockBatchModel) TableName() string {
	return "stock_batches"
}

// ToDomain converts the persistence model to a domain StockBatch entity.
func (m *StockBatchModel) ToDomain() *inventory.StockBatch {
	return &inventory.StockBatch{
		BaseEntity:  m.BaseModel.ToDomain(),
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		CostPerUnit: m.CostPerUnit,
		ExpiryDate:  m.ExpiryDate,
		ReceivedAt:  m.ReceivedAt,
	}
}

// StockBatchModelFromDomain creates a new persistence model from a domain StockBatch entity.
func StockBatchModelFromDomain(b *inventory.StockBatch) *StockBatchModel {
	m := &StockBatchModel{
		ProductID:   b.ProductID,
		Quantity:    b.Quantity,
		CostPerUnit: b.CostPerUnit,
		ExpiryDate:  b.ExpiryDate,
		ReceivedAt:  b.ReceivedAt,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}
