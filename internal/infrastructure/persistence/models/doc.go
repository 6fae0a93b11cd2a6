// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every table
// - catalog.go: products
// - inventory.go: stock_batches
// - breakage.go: breakages
// - sales.go: sales, sale_items
// - purchasing.go: purchase_orders, purchase_order_items
package models
