package models

import (
	"github.com/hortifruti/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product entity.
type ProductModel struct {
	BaseModel
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Unit          string          `gorm:"type:varchar(10);not null"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShelfLifeDays int             `gorm:"not null;default:0"`
	Active        bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:    m.BaseModel.ToDomain(),
		Code:          m.Code,
		Name:          m.Name,
		Unit:          catalog.Unit(m.Unit),
		SalePrice:     m.SalePrice,
		CostPrice:     m.CostPrice,
		ShelfLifeDays: m.ShelfLifeDays,
		Active:        m.Active,
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Code:          p.Code,
		Name:          p.Name,
		Unit:          string(p.Unit),
		SalePrice:     p.SalePrice,
		CostPrice:     p.CostPrice,
		ShelfLifeDays: p.ShelfLifeDays,
		Active:        p.Active,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
