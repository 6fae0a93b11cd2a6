package purchasing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
	"github.com/hortifruti/backend/internal/domain/pricing"
	"github.com/hortifruti/backend/internal/domain/purchasing"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/internal/infrastructure/lock"
	"github.com/hortifruti/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) ObserveClosing(material bool) {
	m.Called(material)
}

var (
	tomato = testutil.NewTestUUID("tomato")
	onion  = testutil.NewTestUUID("onion")
	now    = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	journal  *testutil.Journal
	batches  *testutil.MemBatchRepo
	products *testutil.MemProductRepo
	orders   *testutil.MemPurchaseOrderRepo
	locker   *lock.MemoryLocker
	order    *purchasing.PurchaseOrder
	service  *ClosingService
}

// newFixture seeds a sent order with two lines:
// tomato 10 volumes, 200 kg, 80 per volume, 10 kg tare;
// onion 5 volumes, 100 kg, 40 per volume, no tare.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	j := &testutil.Journal{}
	f := &fixture{
		journal:  j,
		batches:  testutil.NewMemBatchRepo(j),
		products: testutil.NewMemProductRepo(j),
		orders:   testutil.NewMemPurchaseOrderRepo(j),
		locker:   lock.NewMemoryLocker(),
	}
	f.products.Put(testutil.NewProduct(tomato, "Tomate", 0), testutil.NewProduct(onion, "Cebola", 5))

	order, err := purchasing.NewPurchaseOrder("PO-0042", "Ceasa Box 12")
	require.NoError(t, err)
	_, err = order.AddItem(tomato, "Tomate", testutil.Dec("10"), testutil.Dec("200"), testutil.Dec("80"), testutil.Dec("10"), "caixa K")
	require.NoError(t, err)
	_, err = order.AddItem(onion, "Cebola", testutil.Dec("5"), testutil.Dec("100"), testutil.Dec("40"), testutil.Dec("0"), "saco")
	require.NoError(t, err)
	require.NoError(t, order.Send())
	require.NoError(t, f.orders.Save(context.Background(), order))
	f.order = order

	scope := appinv.NewNoOpTransactionScope(appinv.Repositories{
		Batches:        f.batches,
		Products:       f.products,
		PurchaseOrders: f.orders,
	})
	f.service = NewClosingService(scope, f.orders, f.products, f.locker, pricing.DefaultConfig(), nil, opts...)
	f.service.now = func() time.Time { return now }
	return f
}

func (f *fixture) request() ClosingRequest {
	return ClosingRequest{
		Freight: testutil.Dec("27"),
		Items: []ClosingItemInput{
			{ItemID: f.order.Items[1].ID, ReceivedQuantity: testutil.DecPtr("4")},
		},
	}
}

func TestClosingService_Preview(t *testing.T) {
	f := newFixture(t)

	sheet, err := f.service.Preview(context.Background(), f.order.ID, f.request())
	require.NoError(t, err)

	assert.Equal(t, "PO-0042", sheet.OrderNumber)
	assert.Equal(t, "sent", sheet.Status)
	assert.True(t, sheet.CostRatePerKg.Equal(testutil.Dec("0.1")), "27 over 270 net kg")
	require.Len(t, sheet.Lines, 2)

	onionLine := sheet.Lines[1]
	assert.True(t, onionLine.GrossWeight.Equal(testutil.Dec("80")))
	assert.True(t, onionLine.NetWeight.Equal(testutil.Dec("80")))
	assert.True(t, onionLine.GoodsTotal.Equal(testutil.Dec("160")))
	assert.True(t, onionLine.RealCostPerKg.Equal(testutil.Dec("2.1")))
	assert.True(t, onionLine.Margin.Equal(testutil.Dec("30")))
	assert.True(t, onionLine.SalePrice.Equal(testutil.Dec("3")))

	assert.True(t, sheet.Totals.TotalReceived.Equal(testutil.Dec("987")))
	assert.Equal(t, "Frete: "+pricing.FormatMoney(testutil.Dec("27")), sheet.Notes)
	assert.Empty(t, f.journal.Entries(), "preview never writes")
}

func TestClosingService_Preview_RejectsForeignItem(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.Items = append(req.Items, ClosingItemInput{ItemID: uuid.New()})

	_, err := f.service.Preview(context.Background(), f.order.ID, req)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_ITEM", de.Code)
}

func TestClosingService_Preview_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Preview(context.Background(), uuid.New(), f.request())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClosingService_Approve(t *testing.T) {
	obs := new(MockObserver)
	obs.On("ObserveClosing", false).Once()
	f := newFixture(t, WithObserver(obs))
	tomatoItem, onionItem := f.order.Items[0].ID, f.order.Items[1].ID

	resp, err := f.service.Approve(context.Background(), f.order.ID, f.request())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"po.item:" + tomatoItem.String(),
		"po.item:" + onionItem.String(),
		"product.pricing:" + tomato.String(),
		"product.pricing:" + onion.String(),
		"batch.create:" + tomato.String(),
		"batch.create:" + onion.String(),
		"po.close",
	}, f.journal.Entries())

	stored := f.orders.Get(f.order.ID)
	assert.Equal(t, purchasing.StatusReceived, stored.Status)
	require.NotNil(t, stored.TotalReceived)
	assert.True(t, stored.TotalReceived.Equal(testutil.Dec("987")))
	assert.Equal(t, now, *stored.ReceivedAt)
	assert.Contains(t, stored.Notes, "Frete:")
	require.NotNil(t, stored.Items[1].ReceivedQuantity)
	assert.True(t, stored.Items[1].ReceivedQuantity.Equal(testutil.Dec("4")))
	assert.True(t, stored.Items[0].ReceivedQuantity.Equal(testutil.Dec("10")), "missing receipts default to the ordered quantity")

	p := f.products.Get(onion)
	assert.True(t, p.SalePrice.Equal(testutil.Dec("3")))
	assert.True(t, p.CostPrice.Equal(testutil.Dec("2.1")))

	require.Len(t, resp.BatchIDs, 2)
	onionBatch := f.batches.Get(resp.BatchIDs[1])
	assert.Equal(t, onion, onionBatch.ProductID)
	assert.True(t, onionBatch.Quantity.Equal(testutil.Dec("80")))
	assert.True(t, onionBatch.CostPerUnit.Equal(testutil.Dec("2.1")))
	assert.Equal(t, now, onionBatch.ReceivedAt)
	require.NotNil(t, onionBatch.ExpiryDate)
	assert.Equal(t, now.AddDate(0, 0, 5), *onionBatch.ExpiryDate)
	assert.Nil(t, f.batches.Get(resp.BatchIDs[0]).ExpiryDate, "products without shelf life never expire")

	obs.AssertExpectations(t)
}

func TestClosingService_Approve_PriceOverride(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.Items[0].SalePrice = testutil.DecPtr("4.2")

	resp, err := f.service.Approve(context.Background(), f.order.ID, req)
	require.NoError(t, err)

	onionLine := resp.Sheet.Lines[1]
	assert.True(t, onionLine.SalePrice.Equal(testutil.Dec("4.2")))
	assert.True(t, onionLine.Margin.Equal(testutil.Dec("50")))
	assert.True(t, f.products.Get(onion).SalePrice.Equal(testutil.Dec("4.2")))
}

func TestClosingService_Approve_SkipsLinesWithoutGoods(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.Items[0].ReceivedQuantity = testutil.DecPtr("0")

	resp, err := f.service.Approve(context.Background(), f.order.ID, req)
	require.NoError(t, err)

	require.Len(t, resp.BatchIDs, 1)
	assert.Equal(t, tomato, f.batches.Get(resp.BatchIDs[0]).ProductID)
}

func TestClosingService_Approve_Twice(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Approve(context.Background(), f.order.ID, f.request())
	require.NoError(t, err)
	written := len(f.journal.Entries())

	_, err = f.service.Approve(context.Background(), f.order.ID, f.request())
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATE", de.Code)
	assert.Len(t, f.journal.Entries(), written, "a closed order is never written again")
}

func TestClosingService_Approve_LockHeld(t *testing.T) {
	f := newFixture(t)
	held, err := f.locker.Obtain(context.Background(), "po-approval:"+f.order.ID.String(), time.Minute)
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), f.order.ID, f.request())
	assert.ErrorIs(t, err, shared.ErrLockNotAcquired)
	assert.Empty(t, f.journal.Entries())

	require.NoError(t, held.Release(context.Background()))
	_, err = f.service.Approve(context.Background(), f.order.ID, f.request())
	assert.NoError(t, err)
}

func TestClosingService_Approve_MissingProduct(t *testing.T) {
	f := newFixture(t)
	f.products = testutil.NewMemProductRepo(f.journal)
	f.service.products = f.products

	_, err := f.service.Approve(context.Background(), f.order.ID, f.request())
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "PRODUCT_NOT_FOUND", de.Code)
	assert.Empty(t, f.journal.Entries())
}

func TestClosingService_Approve_FailureMidway(t *testing.T) {
	f := newFixture(t)
	f.products.Fail("UpdatePricing", errors.New("statement timeout"))

	_, err := f.service.Approve(context.Background(), f.order.ID, f.request())
	require.Error(t, err)

	entries := f.journal.Entries()
	assert.Len(t, entries, 2, "receipts stay written")
	assert.True(t, strings.HasPrefix(entries[0], "po.item:"))
	assert.Empty(t, f.batches.All())
	assert.Equal(t, purchasing.StatusSent, f.orders.Get(f.order.ID).Status)

	f.products.Fail("UpdatePricing", nil)
	_, err = f.service.Approve(context.Background(), f.order.ID, f.request())
	assert.NoError(t, err, "the lock is released after a failure")
}

func TestClosingService_Approve_MaterialDiscrepancy(t *testing.T) {
	obs := new(MockObserver)
	obs.On("ObserveClosing", true).Once()
	f := newFixture(t, WithObserver(obs))
	req := f.request()
	req.ScaleWeight = testutil.DecPtr("250")

	resp, err := f.service.Approve(context.Background(), f.order.ID, req)
	require.NoError(t, err)

	require.NotNil(t, resp.Sheet.Totals.Discrepancy)
	assert.True(t, resp.Sheet.Totals.Discrepancy.Material)
	assert.Contains(t, f.orders.Get(f.order.ID).Notes, "DIVERGÊNCIA RELEVANTE")
	obs.AssertExpectations(t)
}

func TestClosingService_RejectsCancelledOrders(t *testing.T) {
	f := newFixture(t)
	cancelled := f.orders.Get(f.order.ID)
	require.NoError(t, cancelled.Cancel())
	require.NoError(t, f.orders.Save(context.Background(), &cancelled))

	_, err := f.service.Preview(context.Background(), f.order.ID, f.request())
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATE", de.Code)
}

func TestClosingService_Exports(t *testing.T) {
	f := newFixture(t)

	pdf, err := f.service.ExportPDF(context.Background(), f.order.ID, f.request())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	text, err := f.service.WhatsAppText(context.Background(), f.order.ID, f.request())
	require.NoError(t, err)
	assert.Contains(t, text, "*Recebimento pedido PO-0042*")
	assert.Contains(t, text, "Data: 03/06/2024 10:00")
	assert.Contains(t, text, "*Total: "+pricing.FormatMoney(testutil.Dec("987"))+"*")
}
