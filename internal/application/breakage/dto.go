package breakage

import (
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/breakage"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RecordBreakageRequest registers a stock loss. When BatchID is omitted the
// loss is charged to the product's oldest batch.
type RecordBreakageRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	BatchID   *uuid.UUID      `json:"batch_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Reason    string          `json:"reason" binding:"required"`
	Notes     string          `json:"notes" binding:"max=1000"`
}

// ListBreakagesRequest filters breakage listings and exports
type ListBreakagesRequest struct {
	ProductID string     `form:"product_id" binding:"omitempty,uuid"`
	Reason    string     `form:"reason"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string     `form:"sort_by" binding:"omitempty,oneof=created_at quantity total_loss reason"`
	SortOrder string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the request to a domain filter
func (r ListBreakagesRequest) ToFilter() (breakage.Filter, error) {
	f := breakage.Filter{
		Filter: shared.DefaultFilter(),
		From:   r.From,
	}
	if r.ProductID != "" {
		id, err := uuid.Parse(r.ProductID)
		if err != nil {
			return f, shared.NewDomainError("INVALID_PRODUCT", "Invalid product ID: "+r.ProductID)
		}
		f.ProductID = &id
	}
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
		// "to" is a calendar day and includes the whole day
		end := r.To.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	if r.Reason != "" {
		reason, err := breakage.ParseReason(r.Reason)
		if err != nil {
			return f, err
		}
		f.Reason = &reason
	}
	return f, nil
}

// BreakageResponse represents a breakage in API responses
type BreakageResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	BatchID     *uuid.UUID      `json:"batch_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	TotalLoss   decimal.Decimal `json:"total_loss"`
	Reason      string          `json:"reason"`
	Notes       string          `json:"notes,omitempty"`
	PhotoKey    string          `json:"photo_key,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToBreakageResponse converts a domain breakage to a response
func ToBreakageResponse(b *breakage.Breakage) BreakageResponse {
	return BreakageResponse{
		ID:          b.ID,
		ProductID:   b.ProductID,
		BatchID:     b.BatchID,
		Quantity:    b.Quantity,
		CostPerUnit: b.CostPerUnit,
		TotalLoss:   b.TotalLoss,
		Reason:      string(b.Reason),
		Notes:       b.Notes,
		PhotoKey:    b.PhotoKey,
		CreatedAt:   b.CreatedAt,
	}
}

// PhotoResponse is returned after a photo upload
type PhotoResponse struct {
	BreakageID uuid.UUID `json:"breakage_id"`
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}
