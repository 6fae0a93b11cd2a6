package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// BatchResponse represents a stock batch in API responses
type BatchResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	TotalValue  decimal.Decimal `json:"total_value"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	ReceivedAt  time.Time       `json:"received_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToBatchResponse converts a domain batch to a response
func ToBatchResponse(b *inventory.StockBatch) BatchResponse {
	return BatchResponse{
		ID:          b.ID,
		ProductID:   b.ProductID,
		Quantity:    b.Quantity,
		CostPerUnit: b.CostPerUnit,
		TotalValue:  b.TotalValue(),
		ExpiryDate:  b.ExpiryDate,
		ReceivedAt:  b.ReceivedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToBatchResponses converts a slice of batches
func ToBatchResponses(batches []inventory.StockBatch) []BatchResponse {
	out := make([]BatchResponse, len(batches))
	for i := range batches {
		out[i] = ToBatchResponse(&batches[i])
	}
	return out
}

// AddBatchRequest is a manual stock entry
type AddBatchRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	ReceivedAt  *time.Time      `json:"received_at"`
}

// SetQuantityRequest overwrites a batch quantity
type SetQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// DeductRequest asks for a FIFO deduction
type DeductRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// StockResponse is the total stock of a product
type StockResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Total     decimal.Decimal `json:"total"`
}

// DeductionStepResponse is the effect of a deduction on one batch
type DeductionStepResponse struct {
	BatchID  uuid.UUID       `json:"batch_id"`
	Before   decimal.Decimal `json:"before"`
	Taken    decimal.Decimal `json:"taken"`
	After    decimal.Decimal `json:"after"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// DeductionResult reports what a FIFO deduction actually removed.
// Satisfied is false when stock ran out before the requested quantity.
type DeductionResult struct {
	ProductID uuid.UUID               `json:"product_id"`
	Requested decimal.Decimal         `json:"requested"`
	Deducted  decimal.Decimal         `json:"deducted"`
	Remaining decimal.Decimal         `json:"remaining"`
	Satisfied bool                    `json:"satisfied"`
	Cost      decimal.Decimal         `json:"cost"`
	Steps     []DeductionStepResponse `json:"steps"`
}

func newDeductionResult(productID uuid.UUID, requested decimal.Decimal) *DeductionResult {
	return &DeductionResult{
		ProductID: productID,
		Requested: requested,
		Deducted:  decimal.Zero,
		Remaining: requested,
		Cost:      decimal.Zero,
		Steps:     make([]DeductionStepResponse, 0),
	}
}

func (r *DeductionResult) apply(step inventory.DeductionStep) {
	r.Steps = append(r.Steps, DeductionStepResponse{
		BatchID:  step.BatchID,
		Before:   step.Before,
		Taken:    step.Taken,
		After:    step.After,
		UnitCost: step.UnitCost,
	})
	r.Deducted = r.Deducted.Add(step.Taken)
	r.Remaining = r.Remaining.Sub(step.Taken)
	r.Cost = r.Cost.Add(step.Taken.Mul(step.UnitCost))
}

func (r *DeductionResult) finish() *DeductionResult {
	r.Satisfied = !r.Remaining.IsPositive()
	return r
}
