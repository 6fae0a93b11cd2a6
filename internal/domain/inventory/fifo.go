package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeductionStep is the effect of a deduction on one batch.
type DeductionStep struct {
	BatchID  uuid.UUID
	Before   decimal.Decimal
	Taken    decimal.Decimal
	After    decimal.Decimal
	UnitCost decimal.Decimal
}

// DeductionPlan describes how a requested quantity is spread over batches.
type DeductionPlan struct {
	Requested decimal.Decimal
	Steps     []DeductionStep
	Deducted  decimal.Decimal
	Remaining decimal.Decimal
}

// Satisfied reports whether the whole requested quantity was covered.
func (p DeductionPlan) Satisfied() bool {
	return !p.Remaining.IsPositive()
}

// Cost returns the cost of the deducted quantity at each batch's unit cost.
func (p DeductionPlan) Cost() decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.Steps {
		total = total.Add(s.Taken.Mul(s.UnitCost))
	}
	return total
}

// PlanFIFO walks batches in the given order taking min(batch, remaining)
// from each until the quantity is covered or batches run out. Batches are
// expected oldest received first, see ForProduct. Empty batches produce no
// step.
func PlanFIFO(batches []StockBatch, quantity decimal.Decimal) DeductionPlan {
	plan := DeductionPlan{
		Requested: quantity,
		Steps:     make([]DeductionStep, 0),
		Deducted:  decimal.Zero,
		Remaining: quantity,
	}

	for _, b := range batches {
		if !plan.Remaining.IsPositive() {
			break
		}
		if !b.Quantity.IsPositive() {
			continue
		}

		taken := decimal.Min(plan.Remaining, b.Quantity)
		plan.Steps = append(plan.Steps, DeductionStep{
			BatchID:  b.ID,
			Before:   b.Quantity,
			Taken:    taken,
			After:    b.Quantity.Sub(taken),
			UnitCost: b.CostPerUnit,
		})

		plan.Remaining = plan.Remaining.Sub(taken)
		plan.Deducted = plan.Deducted.Add(taken)
	}

	return plan
}
