// Package sales records checkouts and consumes their stock.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/sales"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Deductor consumes stock of one product through a given repository
type Deductor interface {
	DeductWith(ctx context.Context, repo inventory.StockBatchRepository, productID uuid.UUID, quantity decimal.Decimal) (*appinv.DeductionResult, error)
}

// Observer receives recorded sales, typically for metrics
type Observer interface {
	ObserveSale(total decimal.Decimal)
}

// Recorder records sales. It writes the sale header, then its items, then
// deducts every line FIFO. Stock is not checked beforehand: a line that
// exceeds the available stock is deducted as far as possible and reported
// as oversold.
type Recorder struct {
	scope          appinv.TransactionScope
	sales          sales.Repository
	deductor       Deductor
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	observer       Observer
	logger         *zap.Logger
}

// Option configures a Recorder
type Option func(*Recorder)

// WithIdempotency enables Idempotency-Key handling
func WithIdempotency(store shared.IdempotencyStore, ttl time.Duration) Option {
	return func(r *Recorder) {
		r.idempotency = store
		if ttl > 0 {
			r.idempotencyTTL = ttl
		}
	}
}

// WithObserver sets the sale observer
func WithObserver(o Observer) Option {
	return func(r *Recorder) {
		r.observer = o
	}
}

// NewRecorder creates a Recorder
func NewRecorder(scope appinv.TransactionScope, repo sales.Repository, deductor Deductor, logger *zap.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		scope:          scope,
		sales:          repo,
		deductor:       deductor,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record records a sale. When key is non-empty and idempotency is enabled,
// a repeated key returns the sale recorded by the first request and a key
// whose first request is still running fails with ErrRequestInProgress.
func (r *Recorder) Record(ctx context.Context, req RecordSaleRequest, key string) (*SaleResponse, error) {
	sale, err := sales.NewSale(req.cart())
	if err != nil {
		return nil, err
	}

	useKey := key != "" && r.idempotency != nil
	if useKey {
		if replay, err := r.replay(ctx, key); err != nil || replay != nil {
			return replay, err
		}
		claimed, err := r.idempotency.Claim(ctx, key, r.idempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("claim idempotency key: %w", err)
		}
		if !claimed {
			return nil, shared.ErrRequestInProgress
		}
	}

	resp, err := r.record(ctx, sale)
	if err != nil {
		if useKey {
			if relErr := r.idempotency.Release(ctx, key); relErr != nil {
				r.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}
		return resp, err
	}

	if useKey {
		if err := r.idempotency.Complete(ctx, key, sale.ID.String(), r.idempotencyTTL); err != nil {
			r.logger.Warn("failed to complete idempotency key",
				zap.String("key", key),
				zap.String("sale_id", sale.ID.String()),
				zap.Error(err),
			)
		}
	}
	return resp, nil
}

func (r *Recorder) replay(ctx context.Context, key string) (*SaleResponse, error) {
	result, done, err := r.idempotency.Result(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read idempotency key: %w", err)
	}
	if !done {
		return nil, nil
	}
	id, err := uuid.Parse(result)
	if err != nil {
		return nil, fmt.Errorf("stored sale id %q: %w", result, err)
	}
	sale, err := r.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	resp.Replayed = true
	r.logger.Info("sale replayed from idempotency key", zap.String("sale_id", id.String()))
	return &resp, nil
}

// record runs the writes. If a deduction fails midway the sale and the
// deductions already applied stay in place unless the scope is transactional.
func (r *Recorder) record(ctx context.Context, sale *sales.Sale) (*SaleResponse, error) {
	deductions := make([]appinv.DeductionResult, 0, len(sale.Items))

	err := r.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		if err := repos.SaleRepo().CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := repos.SaleRepo().CreateItems(ctx, sale.Items); err != nil {
			return fmt.Errorf("create sale items: %w", err)
		}
		for i, item := range sale.Items {
			result, err := r.deductor.DeductWith(ctx, repos.BatchRepo(), item.ProductID, item.Quantity)
			if result != nil {
				deductions = append(deductions, *result)
			}
			if err != nil {
				return fmt.Errorf("deduct item %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToSaleResponse(sale)
	resp.Deductions = deductions
	for _, d := range deductions {
		if !d.Satisfied {
			resp.Oversold = true
		}
	}

	if r.observer != nil {
		r.observer.ObserveSale(sale.Total)
	}
	r.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("total", sale.Total.String()),
		zap.Int("items", sale.ItemsCount),
		zap.Bool("oversold", resp.Oversold),
	)
	return &resp, nil
}

// Get returns a sale with its items
func (r *Recorder) Get(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := r.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// List returns one page of sales with the total count
func (r *Recorder) List(ctx context.Context, req ListSalesRequest) ([]SaleResponse, int64, error) {
	items, total, err := r.sales.FindAll(ctx, req.ToFilter())
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	out := make([]SaleResponse, len(items))
	for i := range items {
		out[i] = ToSaleResponse(&items[i])
	}
	return out, total, nil
}
