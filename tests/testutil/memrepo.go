package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/breakage"
	"github.com/hortifruti/backend/internal/domain/catalog"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/purchasing"
	"github.com/hortifruti/backend/internal/domain/sales"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Journal records writes across memory repositories in the order they
// happen, e.g. "sale.create", "sale.items", "batch.set:<id>".
type Journal struct {
	mu      sync.Mutex
	entries []string
}

// Add appends an entry
func (j *Journal) Add(format string, args ...any) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

// Entries returns a copy of the recorded entries
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.entries))
	copy(out, j.entries)
	return out
}

// faults maps a method name to the error it should return
type faults struct {
	mu   sync.Mutex
	errs map[string]error
}

// Fail makes method return err until cleared with Fail(method, nil)
func (f *faults) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

func (f *faults) err(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[method]
}

// MemBatchRepo is an in-memory inventory.StockBatchRepository
type MemBatchRepo struct {
	faults
	mu      sync.Mutex
	batches map[uuid.UUID]inventory.StockBatch
	journal *Journal

	// BeforeDecrement runs before each conditional decrement, outside the
	// repository lock, so tests can interleave a competing writer.
	BeforeDecrement func(id uuid.UUID)
}

// NewMemBatchRepo creates an empty repository
func NewMemBatchRepo(journal *Journal) *MemBatchRepo {
	return &MemBatchRepo{batches: make(map[uuid.UUID]inventory.StockBatch), journal: journal}
}

// Put stores a batch as is
func (r *MemBatchRepo) Put(batches ...inventory.StockBatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range batches {
		r.batches[b.ID] = b
	}
}

// Get returns the stored batch
func (r *MemBatchRepo) Get(id uuid.UUID) inventory.StockBatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[id]
}

// All returns all stored batches ordered by received_at
func (r *MemBatchRepo) All() []inventory.StockBatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.StockBatch, 0, len(r.batches))
	for _, b := range r.batches {
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out
}

func (r *MemBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	if err := r.err("FindByID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &b, nil
}

func (r *MemBatchRepo) FindAvailable(_ context.Context) ([]inventory.StockBatch, error) {
	if err := r.err("FindAvailable"); err != nil {
		return nil, err
	}
	return inventory.Available(r.All()), nil
}

func (r *MemBatchRepo) FindByProduct(_ context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	if err := r.err("FindByProduct"); err != nil {
		return nil, err
	}
	return inventory.ForProduct(r.All(), productID), nil
}

func (r *MemBatchRepo) Create(_ context.Context, batch *inventory.StockBatch) error {
	if err := r.err("Create"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = *batch
	r.journal.Add("batch.create:%s", batch.ProductID)
	return nil
}

func (r *MemBatchRepo) SetQuantity(_ context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	if err := r.err("SetQuantity"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return shared.ErrNotFound
	}
	b.Quantity = quantity
	r.batches[id] = b
	r.journal.Add("batch.set:%s=%s", id, quantity)
	return nil
}

func (r *MemBatchRepo) DecrementQuantity(_ context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	if err := r.err("DecrementQuantity"); err != nil {
		return false, err
	}
	if r.BeforeDecrement != nil {
		r.BeforeDecrement(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok || b.Quantity.LessThan(amount) {
		return false, nil
	}
	b.Quantity = b.Quantity.Sub(amount)
	r.batches[id] = b
	r.journal.Add("batch.decrement:%s-%s", id, amount)
	return true, nil
}

// MemProductRepo is an in-memory catalog.ProductRepository
type MemProductRepo struct {
	faults
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
	journal  *Journal
}

// NewMemProductRepo creates an empty repository
func NewMemProductRepo(journal *Journal) *MemProductRepo {
	return &MemProductRepo{products: make(map[uuid.UUID]catalog.Product), journal: journal}
}

// Put stores products as is
func (r *MemProductRepo) Put(products ...catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		r.products[p.ID] = p
	}
}

// Get returns the stored product
func (r *MemProductRepo) Get(id uuid.UUID) catalog.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id]
}

func (r *MemProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if err := r.err("FindByID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *MemProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if err := r.err("FindByIDs"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	if err := r.err("FindAll"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemProductRepo) Save(_ context.Context, product *catalog.Product) error {
	if err := r.err("Save"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *MemProductRepo) UpdatePricing(_ context.Context, id uuid.UUID, salePrice, costPrice decimal.Decimal) error {
	if err := r.err("UpdatePricing"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.SalePrice = salePrice
	p.CostPrice = costPrice
	r.products[id] = p
	r.journal.Add("product.pricing:%s", id)
	return nil
}

// MemBreakageRepo is an in-memory breakage.Repository
type MemBreakageRepo struct {
	faults
	mu      sync.Mutex
	items   []breakage.Breakage
	journal *Journal
}

// NewMemBreakageRepo creates an empty repository
func NewMemBreakageRepo(journal *Journal) *MemBreakageRepo {
	return &MemBreakageRepo{journal: journal}
}

// All returns stored breakages in insertion order
func (r *MemBreakageRepo) All() []breakage.Breakage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]breakage.Breakage, len(r.items))
	copy(out, r.items)
	return out
}

func (r *MemBreakageRepo) Create(_ context.Context, b *breakage.Breakage) error {
	if err := r.err("Create"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *b)
	r.journal.Add("breakage.create")
	return nil
}

func (r *MemBreakageRepo) FindByID(_ context.Context, id uuid.UUID) (*breakage.Breakage, error) {
	if err := r.err("FindByID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			b := r.items[i]
			return &b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *MemBreakageRepo) FindAll(_ context.Context, filter breakage.Filter) ([]breakage.Breakage, int64, error) {
	if err := r.err("FindAll"); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]breakage.Breakage, 0)
	for _, b := range r.items {
		switch {
		case filter.ProductID != nil && b.ProductID != *filter.ProductID:
			continue
		case filter.Reason != nil && b.Reason != *filter.Reason:
			continue
		case filter.From != nil && b.CreatedAt.Before(*filter.From):
			continue
		case filter.To != nil && b.CreatedAt.After(*filter.To):
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *MemBreakageRepo) AttachPhoto(_ context.Context, id uuid.UUID, key string) error {
	if err := r.err("AttachPhoto"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].PhotoKey = key
			return nil
		}
	}
	return shared.ErrNotFound
}

// MemSaleRepo is an in-memory sales.Repository
type MemSaleRepo struct {
	faults
	mu      sync.Mutex
	sales   map[uuid.UUID]sales.Sale
	items   []sales.SaleItem
	journal *Journal
}

// NewMemSaleRepo creates an empty repository
func NewMemSaleRepo(journal *Journal) *MemSaleRepo {
	return &MemSaleRepo{sales: make(map[uuid.UUID]sales.Sale), journal: journal}
}

// Count returns the number of stored sales
func (r *MemSaleRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sales)
}

// ItemCount returns the number of stored sale items
func (r *MemSaleRepo) ItemCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *MemSaleRepo) CreateSale(_ context.Context, sale *sales.Sale) error {
	if err := r.err("CreateSale"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	header := *sale
	header.Items = nil
	r.sales[sale.ID] = header
	r.journal.Add("sale.create")
	return nil
}

func (r *MemSaleRepo) CreateItems(_ context.Context, items []sales.SaleItem) error {
	if err := r.err("CreateItems"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
	r.journal.Add("sale.items:%d", len(items))
	return nil
}

func (r *MemSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Sale, error) {
	if err := r.err("FindByID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	s.Items = make([]sales.SaleItem, 0)
	for _, item := range r.items {
		if item.SaleID == id {
			s.Items = append(s.Items, item)
		}
	}
	return &s, nil
}

func (r *MemSaleRepo) FindAll(_ context.Context, filter sales.Filter) ([]sales.Sale, int64, error) {
	if err := r.err("FindAll"); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sales.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		if filter.From != nil && s.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

// MemPurchaseOrderRepo is an in-memory purchasing.PurchaseOrderRepository
type MemPurchaseOrderRepo struct {
	faults
	mu      sync.Mutex
	orders  map[uuid.UUID]purchasing.PurchaseOrder
	journal *Journal
}

// NewMemPurchaseOrderRepo creates an empty repository
func NewMemPurchaseOrderRepo(journal *Journal) *MemPurchaseOrderRepo {
	return &MemPurchaseOrderRepo{orders: make(map[uuid.UUID]purchasing.PurchaseOrder), journal: journal}
}

// Get returns a deep copy of the stored order
func (r *MemPurchaseOrderRepo) Get(id uuid.UUID) purchasing.PurchaseOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneOrder(r.orders[id])
}

func cloneOrder(o purchasing.PurchaseOrder) purchasing.PurchaseOrder {
	items := make([]purchasing.PurchaseOrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

func (r *MemPurchaseOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	if err := r.err("FindByID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := cloneOrder(o)
	return &c, nil
}

func (r *MemPurchaseOrderRepo) FindAll(_ context.Context, _ shared.Filter, status *purchasing.Status) ([]purchasing.PurchaseOrder, int64, error) {
	if err := r.err("FindAll"); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]purchasing.PurchaseOrder, 0, len(r.orders))
	for _, o := range r.orders {
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	return out, int64(len(out)), nil
}

func (r *MemPurchaseOrderRepo) Save(_ context.Context, order *purchasing.PurchaseOrder) error {
	if err := r.err("Save"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *MemPurchaseOrderRepo) UpdateItemReceipt(_ context.Context, itemID uuid.UUID, receivedQty, actualUnitCost decimal.Decimal) error {
	if err := r.err("UpdateItemReceipt"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, o := range r.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				qty, cost := receivedQty, actualUnitCost
				o.Items[i].ReceivedQuantity = &qty
				o.Items[i].ActualUnitCost = &cost
				r.orders[id] = o
				r.journal.Add("po.item:%s", itemID)
				return nil
			}
		}
	}
	return shared.ErrNotFound
}

func (r *MemPurchaseOrderRepo) Close(_ context.Context, order *purchasing.PurchaseOrder) error {
	if err := r.err("Close"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Status != purchasing.StatusSent {
		return shared.ErrConcurrencyConflict
	}
	stored.Status = order.Status
	stored.TotalReceived = order.TotalReceived
	stored.ReceivedAt = order.ReceivedAt
	stored.Notes = order.Notes
	r.orders[order.ID] = stored
	r.journal.Add("po.close")
	return nil
}

var (
	_ inventory.StockBatchRepository     = (*MemBatchRepo)(nil)
	_ catalog.ProductRepository          = (*MemProductRepo)(nil)
	_ breakage.Repository                = (*MemBreakageRepo)(nil)
	_ sales.Repository                   = (*MemSaleRepo)(nil)
	_ purchasing.PurchaseOrderRepository = (*MemPurchaseOrderRepo)(nil)
)
