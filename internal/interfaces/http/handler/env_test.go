package handler

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbreakage "github.com/hortifruti/backend/internal/application/breakage"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
	apppurchasing "github.com/hortifruti/backend/internal/application/purchasing"
	appsales "github.com/hortifruti/backend/internal/application/sales"
	"github.com/hortifruti/backend/internal/domain/pricing"
	"github.com/hortifruti/backend/internal/domain/purchasing"
	"github.com/hortifruti/backend/internal/infrastructure/cache"
	"github.com/hortifruti/backend/internal/infrastructure/imaging"
	"github.com/hortifruti/backend/internal/infrastructure/lock"
	"github.com/hortifruti/backend/internal/infrastructure/storage"
	"github.com/hortifruti/backend/internal/interfaces/http/middleware"
	"github.com/hortifruti/backend/tests/testutil"
	"github.com/stretchr/testify/require"
)

var (
	banana = testutil.NewTestUUID("banana")
	apple  = testutil.NewTestUUID("apple")
)

// testEnv wires every handler over in-memory repositories
type testEnv struct {
	router    *gin.Engine
	journal   *testutil.Journal
	batches   *testutil.MemBatchRepo
	products  *testutil.MemProductRepo
	breakages *testutil.MemBreakageRepo
	sales     *testutil.MemSaleRepo
	orders    *testutil.MemPurchaseOrderRepo
	photos    *storage.MemoryObjectStorage
	locker    *lock.MemoryLocker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	middleware.SetupValidator()

	j := &testutil.Journal{}
	e := &testEnv{
		router:    testutil.NewTestRouter(),
		journal:   j,
		batches:   testutil.NewMemBatchRepo(j),
		products:  testutil.NewMemProductRepo(j),
		breakages: testutil.NewMemBreakageRepo(j),
		sales:     testutil.NewMemSaleRepo(j),
		orders:    testutil.NewMemPurchaseOrderRepo(j),
		photos:    storage.NewMemoryObjectStorage(),
		locker:    lock.NewMemoryLocker(),
	}
	e.products.Put(testutil.NewProduct(banana, "Banana prata", 7), testutil.NewProduct(apple, "Maçã gala", 20))

	scope := appinv.NewNoOpTransactionScope(appinv.Repositories{
		Batches:        e.batches,
		Products:       e.products,
		Breakages:      e.breakages,
		Sales:          e.sales,
		PurchaseOrders: e.orders,
	})

	store := appinv.NewBatchStore(e.batches, nil)
	deductor := appinv.NewFIFODeductor(e.batches, nil)
	breakages := appbreakage.NewRecorder(scope, e.breakages, e.products, nil,
		appbreakage.WithPhotos(e.photos, imaging.NewProcessor(64, 80), time.Minute))
	saleRecorder := appsales.NewRecorder(scope, e.sales, deductor, nil,
		appsales.WithIdempotency(cache.NewInMemoryIdempotencyStore(), time.Hour))
	closing := apppurchasing.NewClosingService(scope, e.orders, e.products, e.locker, pricing.DefaultConfig(), nil)

	inv := NewInventoryHandler(store, deductor)
	brk := NewBreakageHandler(breakages, 1<<20)
	sal := NewSaleHandler(saleRecorder)
	clo := NewClosingHandler(closing)
	sys := NewSystemHandler("hortifruti", "test", map[string]Pinger{"database": pingerFunc(func(context.Context) error { return nil })})

	r := e.router
	r.Use(middleware.RequestID())
	r.GET("/health", sys.Health)

	api := r.Group("/api/v1")
	api.GET("/inventory/batches", inv.ListBatches)
	api.POST("/inventory/batches", inv.AddBatch)
	api.GET("/inventory/batches/expiring", inv.ExpiringBatches)
	api.PUT("/inventory/batches/:id/quantity", inv.SetBatchQuantity)
	api.GET("/inventory/products/:id/batches", inv.ProductBatches)
	api.GET("/inventory/products/:id/stock", inv.ProductStock)
	api.POST("/inventory/products/:id/deduct", inv.Deduct)

	api.POST("/breakages", brk.Record)
	api.GET("/breakages", brk.List)
	api.GET("/breakages/export", brk.Export)
	api.POST("/breakages/:id/photo", brk.UploadPhoto)

	api.POST("/sales", sal.Record)
	api.GET("/sales", sal.List)
	api.GET("/sales/:id", sal.Get)

	api.POST("/purchase-orders/:id/closing/preview", clo.Preview)
	api.POST("/purchase-orders/:id/closing/approve", clo.Approve)
	api.POST("/purchase-orders/:id/closing/pdf", clo.PDF)
	api.POST("/purchase-orders/:id/closing/whatsapp", clo.WhatsApp)
	return e
}

func (e *testEnv) perform(t *testing.T, req testutil.Request) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Perform(t, e.router, req)
}

// seedBatches puts two banana batches received a day apart and one apple batch
func (e *testEnv) seedBatches() (older, newer, other uuid.UUID) {
	older = testutil.NewTestUUID("banana-1")
	newer = testutil.NewTestUUID("banana-2")
	other = testutil.NewTestUUID("apple-1")
	today := time.Now().UTC().Truncate(24 * time.Hour)
	e.batches.Put(
		testutil.NewBatch(older, banana, "5", "2", today.AddDate(0, 0, -2), timePtr(today.AddDate(0, 0, 2))),
		testutil.NewBatch(newer, banana, "10", "3", today.AddDate(0, 0, -1), timePtr(today.AddDate(0, 0, 6))),
		testutil.NewBatch(other, apple, "8", "4", today.AddDate(0, 0, -3), nil),
	)
	return older, newer, other
}

// seedOrder stores a sent order with one banana line of 10 volumes,
// 100 kg gross at 30 per volume and no tare
func (e *testEnv) seedOrder(t *testing.T) *purchasing.PurchaseOrder {
	t.Helper()
	order, err := purchasing.NewPurchaseOrder("PO-1001", "Sítio Boa Vista")
	require.NoError(t, err)
	_, err = order.AddItem(banana, "Banana prata", testutil.Dec("10"), testutil.Dec("100"), testutil.Dec("30"), testutil.Dec("0"), "caixa")
	require.NoError(t, err)
	require.NoError(t, order.Send())
	require.NoError(t, e.orders.Save(context.Background(), order))
	return order
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func timePtr(t time.Time) *time.Time { return &t }
