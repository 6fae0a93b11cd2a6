package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/hortifruti/backend/internal/application/inventory")

// DeductionMode selects how batch quantities are written
type DeductionMode string

const (
	// ModeSnapshot plans against one read and writes absolute quantities.
	// Concurrent deductions of the same product can lose updates.
	ModeSnapshot DeductionMode = "snapshot"
	// ModeAtomic writes each step as a conditional decrement and replans
	// against a fresh read when another writer got there first.
	ModeAtomic DeductionMode = "atomic"
)

// DeductionObserver receives deduction outcomes, typically for metrics
type DeductionObserver interface {
	ObserveDeduction(requested, deducted decimal.Decimal)
	ObserveDeductionConflict()
}

// FIFODeductor removes quantity from a product's batches oldest received
// first. It never fails on insufficient stock: it deducts what exists and
// reports Satisfied=false.
type FIFODeductor struct {
	repo        inventory.StockBatchRepository
	mode        DeductionMode
	maxAttempts int
	observer    DeductionObserver
	logger      *zap.Logger
}

// DeductorOption configures a FIFODeductor
type DeductorOption func(*FIFODeductor)

// WithMode sets the write mode
func WithMode(mode DeductionMode) DeductorOption {
	return func(d *FIFODeductor) {
		d.mode = mode
	}
}

// WithMaxAttempts bounds the number of read-plan-write passes in atomic mode
func WithMaxAttempts(n int) DeductorOption {
	return func(d *FIFODeductor) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// WithObserver sets the deduction observer
func WithObserver(o DeductionObserver) DeductorOption {
	return func(d *FIFODeductor) {
		d.observer = o
	}
}

// NewFIFODeductor creates a deductor in snapshot mode unless configured otherwise
func NewFIFODeductor(repo inventory.StockBatchRepository, logger *zap.Logger, opts ...DeductorOption) *FIFODeductor {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &FIFODeductor{
		repo:        repo,
		mode:        ModeSnapshot,
		maxAttempts: 3,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Mode returns the configured write mode
func (d *FIFODeductor) Mode() DeductionMode {
	return d.mode
}

// Deduct removes quantity of product using the deductor's own repository
func (d *FIFODeductor) Deduct(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) (*DeductionResult, error) {
	return d.DeductWith(ctx, d.repo, productID, quantity)
}

// DeductWith removes quantity using repo, which lets callers run the
// deduction inside a transaction scope. On a write error the returned
// result holds the steps already persisted.
func (d *FIFODeductor) DeductWith(ctx context.Context, repo inventory.StockBatchRepository, productID uuid.UUID, quantity decimal.Decimal) (*DeductionResult, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}

	ctx, span := tracer.Start(ctx, "inventory.deduct")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", productID.String()),
		attribute.String("deduction.mode", string(d.mode)),
		attribute.String("deduction.requested", quantity.String()),
	)

	var (
		result *DeductionResult
		err    error
	)
	if d.mode == ModeAtomic {
		result, err = d.deductAtomic(ctx, repo, productID, quantity)
	} else {
		result, err = d.deductSnapshot(ctx, repo, productID, quantity)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deduction failed")
		return result, err
	}
	span.SetAttributes(
		attribute.String("deduction.deducted", result.Deducted.String()),
		attribute.Bool("deduction.satisfied", result.Satisfied),
		attribute.Int("deduction.steps", len(result.Steps)),
	)

	if d.observer != nil {
		d.observer.ObserveDeduction(result.Requested, result.Deducted)
	}
	if !result.Satisfied {
		d.logger.Warn("deduction exceeded available stock",
			zap.String("product_id", productID.String()),
			zap.String("requested", result.Requested.String()),
			zap.String("deducted", result.Deducted.String()),
			zap.String("shortfall", result.Remaining.String()),
		)
	}
	return result, nil
}

func (d *FIFODeductor) deductSnapshot(ctx context.Context, repo inventory.StockBatchRepository, productID uuid.UUID, quantity decimal.Decimal) (*DeductionResult, error) {
	result := newDeductionResult(productID, quantity)

	batches, err := repo.FindByProduct(ctx, productID)
	if err != nil {
		return result.finish(), fmt.Errorf("fetch batches: %w", err)
	}

	plan := inventory.PlanFIFO(inventory.ForProduct(batches, productID), quantity)
	for _, step := range plan.Steps {
		if err := repo.SetQuantity(ctx, step.BatchID, step.After); err != nil {
			return result.finish(), fmt.Errorf("set quantity of batch %s: %w", step.BatchID, err)
		}
		result.apply(step)
	}
	return result.finish(), nil
}

func (d *FIFODeductor) deductAtomic(ctx context.Context, repo inventory.StockBatchRepository, productID uuid.UUID, quantity decimal.Decimal) (*DeductionResult, error) {
	result := newDeductionResult(productID, quantity)

	for attempt := 1; attempt <= d.maxAttempts && result.Remaining.IsPositive(); attempt++ {
		batches, err := repo.FindByProduct(ctx, productID)
		if err != nil {
			return result.finish(), fmt.Errorf("fetch batches: %w", err)
		}

		plan := inventory.PlanFIFO(inventory.ForProduct(batches, productID), result.Remaining)
		if len(plan.Steps) == 0 {
			break
		}

		conflict := false
		for _, step := range plan.Steps {
			applied, err := repo.DecrementQuantity(ctx, step.BatchID, step.Taken)
			if err != nil {
				return result.finish(), fmt.Errorf("decrement batch %s: %w", step.BatchID, err)
			}
			if !applied {
				// Another writer drained this batch. Later batches are left
				// alone so consumption stays oldest first on the next pass.
				conflict = true
				if d.observer != nil {
					d.observer.ObserveDeductionConflict()
				}
				d.logger.Debug("conditional decrement missed, replanning",
					zap.String("batch_id", step.BatchID.String()),
					zap.Int("attempt", attempt),
				)
				break
			}
			result.apply(step)
		}
		if !conflict {
			break
		}
	}
	return result.finish(), nil
}
