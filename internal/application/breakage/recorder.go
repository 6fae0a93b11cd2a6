// Package breakage records stock losses and charges them to stock batches.
package breakage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
	"github.com/hortifruti/backend/internal/domain/breakage"
	"github.com/hortifruti/backend/internal/domain/catalog"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/internal/infrastructure/export"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Observer receives recorded losses, typically for metrics
type Observer interface {
	ObserveBreakage(reason string, loss decimal.Decimal)
}

// PhotoStorage stores breakage photos
type PhotoStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

// PhotoProcessor shrinks photos before upload
type PhotoProcessor interface {
	Downscale(data []byte) ([]byte, string, error)
}

// Recorder records breakages. Each record reads the cost source batch,
// writes its new quantity and inserts the breakage, in that order, through
// the configured transaction scope.
type Recorder struct {
	scope     appinv.TransactionScope
	breakages breakage.Repository
	products  catalog.ProductRepository
	storage   PhotoStorage
	processor PhotoProcessor
	observer  Observer
	urlTTL    time.Duration
	logger    *zap.Logger
}

// Option configures a Recorder
type Option func(*Recorder)

// WithObserver sets the breakage observer
func WithObserver(o Observer) Option {
	return func(r *Recorder) {
		r.observer = o
	}
}

// WithPhotos enables photo uploads
func WithPhotos(storage PhotoStorage, processor PhotoProcessor, urlTTL time.Duration) Option {
	return func(r *Recorder) {
		r.storage = storage
		r.processor = processor
		if urlTTL > 0 {
			r.urlTTL = urlTTL
		}
	}
}

// NewRecorder creates a Recorder
func NewRecorder(scope appinv.TransactionScope, breakages breakage.Repository, products catalog.ProductRepository, logger *zap.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		scope:     scope,
		breakages: breakages,
		products:  products,
		urlTTL:    15 * time.Minute,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record registers a loss. The cost is copied from the given batch, else
// from the product's oldest batch with stock, else from its oldest batch.
// A product without batches records the loss at zero cost. The batch
// quantity is floored at zero.
func (r *Recorder) Record(ctx context.Context, req RecordBreakageRequest) (*BreakageResponse, error) {
	if req.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Breakage quantity must be positive")
	}
	reason, err := breakage.ParseReason(req.Reason)
	if err != nil {
		return nil, err
	}

	var recorded *breakage.Breakage
	err = r.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		source, err := r.costSource(ctx, repos.BatchRepo(), req.ProductID, req.BatchID)
		if err != nil {
			return err
		}

		cost := decimal.Zero
		var batchID *uuid.UUID
		if source != nil {
			cost = source.CostPerUnit
			id := source.ID
			batchID = &id
		}

		b, err := breakage.NewBreakage(req.ProductID, batchID, req.Quantity, cost, reason, req.Notes)
		if err != nil {
			return err
		}

		if source != nil {
			if err := repos.BatchRepo().SetQuantity(ctx, source.ID, source.Remove(req.Quantity)); err != nil {
				return fmt.Errorf("update batch %s: %w", source.ID, err)
			}
		}
		if err := repos.BreakageRepo().Create(ctx, b); err != nil {
			return fmt.Errorf("create breakage: %w", err)
		}
		recorded = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.observer != nil {
		r.observer.ObserveBreakage(string(recorded.Reason), recorded.TotalLoss)
	}
	fields := []zap.Field{
		zap.String("breakage_id", recorded.ID.String()),
		zap.String("product_id", recorded.ProductID.String()),
		zap.String("quantity", recorded.Quantity.String()),
		zap.String("total_loss", recorded.TotalLoss.String()),
		zap.String("reason", string(recorded.Reason)),
	}
	if recorded.BatchID == nil {
		r.logger.Warn("breakage recorded without a batch, loss booked at zero cost", fields...)
	} else {
		r.logger.Info("breakage recorded", fields...)
	}

	resp := ToBreakageResponse(recorded)
	return &resp, nil
}

func (r *Recorder) costSource(ctx context.Context, repo inventory.StockBatchRepository, productID uuid.UUID, batchID *uuid.UUID) (*inventory.StockBatch, error) {
	if batchID != nil {
		b, err := repo.FindByID(ctx, *batchID)
		if err != nil {
			return nil, fmt.Errorf("find batch %s: %w", *batchID, err)
		}
		if b.ProductID != productID {
			return nil, shared.NewDomainError("BATCH_PRODUCT_MISMATCH", "Batch does not belong to the product")
		}
		return b, nil
	}

	batches, err := repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("fetch batches: %w", err)
	}
	ordered := inventory.ForProduct(batches, productID)
	for i := range ordered {
		if ordered[i].HasStock() {
			return &ordered[i], nil
		}
	}
	if oldest, ok := inventory.Oldest(batches, productID); ok {
		return &oldest, nil
	}
	return nil, nil
}

// List returns one page of breakages with the total count
func (r *Recorder) List(ctx context.Context, req ListBreakagesRequest) ([]BreakageResponse, int64, error) {
	filter, err := req.ToFilter()
	if err != nil {
		return nil, 0, err
	}
	items, total, err := r.breakages.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list breakages: %w", err)
	}
	out := make([]BreakageResponse, len(items))
	for i := range items {
		out[i] = ToBreakageResponse(&items[i])
	}
	return out, total, nil
}

// ExportXLSX renders every breakage matching the filter, ignoring paging
func (r *Recorder) ExportXLSX(ctx context.Context, req ListBreakagesRequest) ([]byte, error) {
	filter, err := req.ToFilter()
	if err != nil {
		return nil, err
	}
	filter.Page, filter.PageSize = 1, 0

	items, _, err := r.breakages.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list breakages: %w", err)
	}

	names := map[uuid.UUID]string{}
	if r.products != nil && len(items) > 0 {
		ids := make([]uuid.UUID, 0, len(items))
		seen := make(map[uuid.UUID]bool)
		for _, b := range items {
			if !seen[b.ProductID] {
				seen[b.ProductID] = true
				ids = append(ids, b.ProductID)
			}
		}
		products, err := r.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve product names: %w", err)
		}
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}

	return export.BreakageWorkbook(items, names)
}

// AttachPhoto downscales and stores a photo, then links it to the breakage.
// The stored object is removed again if the link cannot be written.
func (r *Recorder) AttachPhoto(ctx context.Context, id uuid.UUID, data []byte) (*PhotoResponse, error) {
	if r.storage == nil || r.processor == nil {
		return nil, shared.NewDomainError("PHOTOS_DISABLED", "Photo upload is not configured")
	}
	if len(data) == 0 {
		return nil, shared.NewDomainError("INVALID_PHOTO", "Photo cannot be empty")
	}
	if _, err := r.breakages.FindByID(ctx, id); err != nil {
		return nil, err
	}

	compressed, contentType, err := r.processor.Downscale(data)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PHOTO", err.Error())
	}

	key := fmt.Sprintf("breakages/%s/%s.jpg", id, uuid.New())
	if err := r.storage.Upload(ctx, key, compressed, contentType); err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	if err := r.breakages.AttachPhoto(ctx, id, key); err != nil {
		if delErr := r.storage.DeleteObject(ctx, key); delErr != nil {
			r.logger.Warn("failed to remove orphaned photo",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("attach photo: %w", err)
	}

	url, expiresAt, err := r.storage.GenerateDownloadURL(ctx, key, r.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("generate photo url: %w", err)
	}

	r.logger.Info("breakage photo stored",
		zap.String("breakage_id", id.String()),
		zap.String("key", key),
		zap.Int("original_bytes", len(data)),
		zap.Int("stored_bytes", len(compressed)),
	)

	return &PhotoResponse{BreakageID: id, Key: key, URL: url, ExpiresAt: expiresAt}, nil
}
