// Package purchasing runs the receiving and closing of purchase orders.
package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
	"github.com/hortifruti/backend/internal/domain/catalog"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/pricing"
	"github.com/hortifruti/backend/internal/domain/purchasing"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/internal/infrastructure/export"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/hortifruti/backend/internal/application/purchasing")

// Observer receives approved closings, typically for metrics
type Observer interface {
	ObserveClosing(materialDiscrepancy bool)
}

// ClosingService derives closing sheets and approves purchase orders
type ClosingService struct {
	scope    appinv.TransactionScope
	orders   purchasing.PurchaseOrderRepository
	products catalog.ProductRepository
	locker   shared.Locker
	cfg      pricing.Config
	lockTTL  time.Duration
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a ClosingService
type Option func(*ClosingService)

// WithLockTTL bounds how long an approval holds the order lock
func WithLockTTL(ttl time.Duration) Option {
	return func(s *ClosingService) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithObserver sets the closing observer
func WithObserver(o Observer) Option {
	return func(s *ClosingService) {
		s.observer = o
	}
}

// NewClosingService creates a ClosingService
func NewClosingService(
	scope appinv.TransactionScope,
	orders purchasing.PurchaseOrderRepository,
	products catalog.ProductRepository,
	locker shared.Locker,
	cfg pricing.Config,
	logger *zap.Logger,
	opts ...Option,
) *ClosingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ClosingService{
		scope:    scope,
		orders:   orders,
		products: products,
		locker:   locker,
		cfg:      cfg,
		lockTTL:  30 * time.Second,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type orderHeader struct {
	id       uuid.UUID
	number   string
	supplier string
	status   string
}

func headerOf(o *purchasing.PurchaseOrder) orderHeader {
	return orderHeader{
		id:       o.ID,
		number:   o.OrderNumber,
		supplier: o.SupplierName,
		status:   string(o.Status),
	}
}

// Preview derives the closing sheet without writing anything
func (s *ClosingService) Preview(ctx context.Context, orderID uuid.UUID, req ClosingRequest) (*ClosingSheetResponse, error) {
	order, sheet, err := s.load(ctx, orderID, req)
	if err != nil {
		return nil, err
	}
	resp := toSheetResponse(headerOf(order), sheet)
	return &resp, nil
}

// ExportPDF renders the closing protocol as a PDF document
func (s *ClosingService) ExportPDF(ctx context.Context, orderID uuid.UUID, req ClosingRequest) ([]byte, error) {
	order, sheet, err := s.load(ctx, orderID, req)
	if err != nil {
		return nil, err
	}
	return export.ClosingPDF(s.exportHeader(order), sheet)
}

// WhatsAppText renders the closing protocol as a WhatsApp message
func (s *ClosingService) WhatsAppText(ctx context.Context, orderID uuid.UUID, req ClosingRequest) (string, error) {
	order, sheet, err := s.load(ctx, orderID, req)
	if err != nil {
		return "", err
	}
	return export.ClosingText(s.exportHeader(order), sheet), nil
}

func (s *ClosingService) exportHeader(o *purchasing.PurchaseOrder) export.ClosingHeader {
	at := s.now()
	if o.ReceivedAt != nil {
		at = *o.ReceivedAt
	}
	return export.ClosingHeader{OrderNumber: o.OrderNumber, SupplierName: o.SupplierName, ClosedAt: at}
}

func (s *ClosingService) load(ctx context.Context, orderID uuid.UUID, req ClosingRequest) (*purchasing.PurchaseOrder, *pricing.Sheet, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.Status == purchasing.StatusCancelled {
		return nil, nil, shared.NewDomainError("INVALID_STATE", "Cancelled orders cannot be received")
	}
	sheet, err := buildSheet(order, req, s.cfg)
	if err != nil {
		return nil, nil, err
	}
	return order, sheet, nil
}

func buildSheet(order *purchasing.PurchaseOrder, req ClosingRequest, cfg pricing.Config) (*pricing.Sheet, error) {
	overrides := make(map[uuid.UUID]ClosingItemInput, len(req.Items))
	for _, in := range req.Items {
		if order.Item(in.ItemID) == nil {
			return nil, shared.NewDomainError("INVALID_ITEM", fmt.Sprintf("Item %s does not belong to order %s", in.ItemID, order.OrderNumber))
		}
		overrides[in.ItemID] = in
	}

	items := make([]pricing.Item, len(order.Items))
	for i, oi := range order.Items {
		item := pricing.Item{
			ItemID:            oi.ID,
			ProductID:         oi.ProductID,
			ProductName:       oi.ProductName,
			OrderedQuantity:   oi.OrderedQuantity,
			ReceivedQuantity:  oi.ReceivedQuantity,
			EstimatedKg:       oi.EstimatedKg,
			EstimatedUnitCost: oi.EstimatedUnitCost,
			ActualUnitCost:    oi.ActualUnitCost,
			TareTotal:         oi.TareTotal,
			Packaging:         oi.Packaging,
		}
		if in, ok := overrides[oi.ID]; ok {
			if in.ReceivedQuantity != nil {
				item.ReceivedQuantity = in.ReceivedQuantity
			}
			if in.ActualUnitCost != nil {
				item.ActualUnitCost = in.ActualUnitCost
			}
			item.Margin = in.Margin
			item.SalePrice = in.SalePrice
		}
		items[i] = item
	}
	return pricing.NewSheet(items, req.inputs(), cfg)
}

// Approve closes a sent order. Under a per-order lock it writes, in order:
// every item's receipt, every product's prices, one stock batch per line
// that received goods, and finally the order header. Without a
// transactional scope a failure leaves the earlier steps written.
func (s *ClosingService) Approve(ctx context.Context, orderID uuid.UUID, req ClosingRequest) (*ApprovalResponse, error) {
	ctx, span := tracer.Start(ctx, "purchasing.approve", trace.WithAttributes(
		attribute.String("purchase_order.id", orderID.String()),
	))
	defer span.End()

	resp, err := s.approve(ctx, orderID, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "approval failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("purchase_order.batches_created", len(resp.BatchIDs)))
	return resp, nil
}

func (s *ClosingService) approve(ctx context.Context, orderID uuid.UUID, req ClosingRequest) (*ApprovalResponse, error) {
	lock, err := s.locker.Obtain(ctx, "po-approval:"+orderID.String(), s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release approval lock", zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}()

	order, sheet, err := s.load(ctx, orderID, req)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanReceive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot close order in "+string(order.Status)+" status")
	}

	lines := sheet.Lines()
	products, err := s.productsOf(ctx, lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	totals := sheet.Totals()
	batchIDs := make([]uuid.UUID, 0, len(lines))

	err = s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		for _, l := range lines {
			if err := repos.PurchaseOrderRepo().UpdateItemReceipt(ctx, l.ItemID, l.Quantity(), l.UnitCost()); err != nil {
				return fmt.Errorf("update receipt of item %s: %w", l.ItemID, err)
			}
		}

		for _, l := range lines {
			if err := repos.ProductRepo().UpdatePricing(ctx, l.ProductID, l.SalePrice.Round(2), l.RealCostPerKg.Round(4)); err != nil {
				return fmt.Errorf("update pricing of product %s: %w", l.ProductID, err)
			}
		}

		for _, l := range lines {
			if !l.NetWeight.IsPositive() || !l.Quantity().IsPositive() {
				continue
			}
			batch, err := inventory.NewStockBatch(l.ProductID, l.NetWeight, l.RealCostPerKg.Round(4), products[l.ProductID].ExpiryFrom(now), now)
			if err != nil {
				return err
			}
			if err := repos.BatchRepo().Create(ctx, batch); err != nil {
				return fmt.Errorf("create batch for product %s: %w", l.ProductID, err)
			}
			batchIDs = append(batchIDs, batch.ID)
		}

		if err := order.Close(totals.TotalReceived, sheet.Notes(), now); err != nil {
			return err
		}
		if err := repos.PurchaseOrderRepo().Close(ctx, order); err != nil {
			return fmt.Errorf("close order: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("purchase order approval failed",
			zap.String("order_id", orderID.String()),
			zap.Int("batches_created", len(batchIDs)),
			zap.Error(err),
		)
		return nil, err
	}

	material := totals.Discrepancy != nil && totals.Discrepancy.Material
	if s.observer != nil {
		s.observer.ObserveClosing(material)
	}
	s.logger.Info("purchase order closed",
		zap.String("order_id", orderID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total_received", totals.TotalReceived.String()),
		zap.Int("batches_created", len(batchIDs)),
		zap.Bool("material_discrepancy", material),
	)

	return &ApprovalResponse{
		Sheet:    toSheetResponse(headerOf(order), sheet),
		BatchIDs: batchIDs,
		ClosedAt: now,
	}, nil
}

func (s *ClosingService) productsOf(ctx context.Context, lines []pricing.Line) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	out := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		out[found[i].ID] = &found[i]
	}
	for _, l := range lines {
		if _, ok := out[l.ProductID]; !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product "+l.ProductName+" does not exist")
		}
	}
	return out, nil
}
