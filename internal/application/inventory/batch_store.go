package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BatchStore exposes stock batches. Queries fetch a fresh snapshot from the
// repository on each call and filter it in memory.
type BatchStore struct {
	repo   inventory.StockBatchRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewBatchStore creates a BatchStore over repo
func NewBatchStore(repo inventory.StockBatchRepository, logger *zap.Logger) *BatchStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchStore{repo: repo, logger: logger, now: time.Now}
}

// ListBatches returns batches with stock, earliest expiry first and
// batches without expiry last
func (s *BatchStore) ListBatches(ctx context.Context) ([]BatchResponse, error) {
	batches, err := s.repo.FindAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return ToBatchResponses(inventory.Available(batches)), nil
}

// AddBatch creates a batch from a manual stock entry
func (s *BatchStore) AddBatch(ctx context.Context, req AddBatchRequest) (*BatchResponse, error) {
	receivedAt := s.now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	batch, err := inventory.NewStockBatch(req.ProductID, req.Quantity, req.CostPerUnit, req.ExpiryDate, receivedAt)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	s.logger.Info("stock batch added",
		zap.String("batch_id", batch.ID.String()),
		zap.String("product_id", batch.ProductID.String()),
		zap.String("quantity", batch.Quantity.String()),
	)

	resp := ToBatchResponse(batch)
	return &resp, nil
}

// SetBatchQuantity overwrites a batch quantity with an absolute value. The
// caller computes the value from its own snapshot, so two writers can race.
func (s *BatchStore) SetBatchQuantity(ctx context.Context, batchID uuid.UUID, quantity decimal.Decimal) (*BatchResponse, error) {
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity cannot be negative")
	}
	if err := s.repo.SetQuantity(ctx, batchID, quantity); err != nil {
		return nil, err
	}
	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	resp := ToBatchResponse(batch)
	return &resp, nil
}

// BatchesForProduct returns a product's batches oldest received first,
// which is the order FIFO consumes them in
func (s *BatchStore) BatchesForProduct(ctx context.Context, productID uuid.UUID) ([]BatchResponse, error) {
	batches, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("batches for product: %w", err)
	}
	return ToBatchResponses(inventory.ForProduct(batches, productID)), nil
}

// TotalStock sums quantity over every batch of the product
func (s *BatchStore) TotalStock(ctx context.Context, productID uuid.UUID) (*StockResponse, error) {
	batches, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("total stock: %w", err)
	}
	return &StockResponse{
		ProductID: productID,
		Total:     inventory.TotalStock(batches, productID),
	}, nil
}

// ExpiringWithin returns batches with stock that expire between today and
// today plus days
func (s *BatchStore) ExpiringWithin(ctx context.Context, days int) ([]BatchResponse, error) {
	if days < 0 {
		return nil, shared.NewDomainError("INVALID_DAYS", "Days cannot be negative")
	}
	batches, err := s.repo.FindAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("expiring batches: %w", err)
	}
	return ToBatchResponses(inventory.ExpiringWithin(batches, s.now(), days)), nil
}
