package models

import (
	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/breakage"
	"github.com/shopspring/decimal"
)

// BreakageModel is the persistence model for the Breakage entity.
type BreakageModel struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID     *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalLoss   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason      string          `gorm:"type:varchar(30);not null;index"`
	Notes       string          `gorm:"type:text"`
	PhotoKey    string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BreakageModel) TableName() string {
	return "breakages"
}

// ToDomain converts the persistence model to a domain Breakage entity.
func (m *BreakageModel) ToDomain() *breakage.Breakage {
	return &breakage.Breakage{
		BaseEntity:  m.BaseModel.ToDomain(),
		ProductID:   m.ProductID,
		BatchID:     m.BatchID,
		Quantity:    m.Quantity,
		CostPerUnit: m.CostPerUnit,
		TotalLoss:   m.TotalLoss,
		Reason:      breakage.Reason(m.Reason),
		Notes:       m.Notes,
		PhotoKey:    m.PhotoKey,
	}
}

// BreakageModelFromDomain creates a new persistence model from a domain Breakage entity.
func BreakageModelFromDomain(b *breakage.Breakage) *BreakageModel {
	m := &BreakageModel{
		ProductID:   b.ProductID,
		BatchID:     b.BatchID,
		Quantity:    b.Quantity,
		CostPerUnit: b.CostPerUnit,
		TotalLoss:   b.TotalLoss,
		Reason:      string(b.Reason),
		Notes:       b.Notes,
		PhotoKey:    b.PhotoKey,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}
