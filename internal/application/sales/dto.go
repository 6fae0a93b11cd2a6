package sales

import (
	"time"

	"github.com/google/uuid"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
	"github.com/hortifruti/backend/internal/domain/sales"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CartItemRequest is one checkout line
type CartItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	BatchID   *uuid.UUID      `json:"batch_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// RecordSaleRequest is a completed checkout
type RecordSaleRequest struct {
	Items []CartItemRequest `json:"items" binding:"required,dive"`
}

func (r RecordSaleRequest) cart() []sales.CartItem {
	out := make([]sales.CartItem, len(r.Items))
	for i, item := range r.Items {
		out[i] = sales.CartItem{
			ProductID: item.ProductID,
			BatchID:   item.BatchID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		}
	}
	return out
}

// ListSalesRequest filters sale listings
type ListSalesRequest struct {
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string     `form:"sort_by" binding:"omitempty,oneof=created_at total items_count"`
	SortOrder string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the request to a domain filter
func (r ListSalesRequest) ToFilter() sales.Filter {
	f := sales.Filter{Filter: shared.DefaultFilter(), From: r.From}
	if r.Page > 0 {
		f.Page = r.Page
	}
	if r.PageSize > 0 {
		f.PageSize = r.PageSize
	}
	if r.SortBy != "" {
		f.OrderBy = r.SortBy
	}
	if r.SortOrder != "" {
		f.OrderDir = r.SortOrder
	}
	if r.To != nil {
		end := r.To.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	return f
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	BatchID   *uuid.UUID      `json:"batch_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// SaleResponse represents a sale in API responses. Deductions are only
// present on the response of the request that recorded the sale.
type SaleResponse struct {
	ID         uuid.UUID                `json:"id"`
	Total      decimal.Decimal          `json:"total"`
	ItemsCount int                      `json:"items_count"`
	CreatedAt  time.Time                `json:"created_at"`
	Items      []SaleItemResponse       `json:"items,omitempty"`
	Deductions []appinv.DeductionResult `json:"deductions,omitempty"`
	Oversold   bool                     `json:"oversold"`
	Replayed   bool                     `json:"replayed,omitempty"`
}

// ToSaleResponse converts a domain sale to a response
func ToSaleResponse(s *sales.Sale) SaleResponse {
	resp := SaleResponse{
		ID:         s.ID,
		Total:      s.Total,
		ItemsCount: s.ItemsCount,
		CreatedAt:  s.CreatedAt,
		Items:      make([]SaleItemResponse, len(s.Items)),
	}
	for i, item := range s.Items {
		resp.Items[i] = SaleItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			BatchID:   item.BatchID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		}
	}
	return resp
}
