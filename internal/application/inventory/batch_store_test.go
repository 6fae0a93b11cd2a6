package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batch(id, productID uuid.UUID, qty, cost string, received time.Time, expiry *time.Time) inventory.StockBatch {
	return inventory.StockBatch{
		BaseEntity:  shared.BaseEntity{ID: id, CreatedAt: received, UpdatedAt: received},
		ProductID:   productID,
		Quantity:    decimal.RequireFromString(qty),
		CostPerUnit: decimal.RequireFromString(cost),
		ExpiryDate:  expiry,
		ReceivedAt:  received,
	}
}

func TestBatchStore_ListBatches(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	product := testutil.NewTestUUID("1")
	repo.Put(
		batch(testutil.NewTestUUID("10"), product, "5", "2", testutil.Day(2024, 1, 1), nil),
		batch(testutil.NewTestUUID("11"), product, "3", "2", testutil.Day(2024, 1, 2), testutil.DayPtr(2024, 2, 1)),
		batch(testutil.NewTestUUID("12"), product, "0", "2", testutil.Day(2024, 1, 3), testutil.DayPtr(2024, 1, 5)),
		batch(testutil.NewTestUUID("13"), product, "1", "2", testutil.Day(2024, 1, 4), testutil.DayPtr(2024, 1, 20)),
	)

	store := NewBatchStore(repo, nil)
	got, err := store.ListBatches(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, testutil.NewTestUUID("13"), got[0].ID)
	assert.Equal(t, testutil.NewTestUUID("11"), got[1].ID)
	assert.Equal(t, testutil.NewTestUUID("10"), got[2].ID)
}

func TestBatchStore_AddBatch(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	store := NewBatchStore(repo, nil)
	store.now = func() time.Time { return testutil.Day(2024, 3, 1) }

	t.Run("defaults received_at to now", func(t *testing.T) {
		resp, err := store.AddBatch(context.Background(), AddBatchRequest{
			ProductID:   testutil.NewTestUUID("1"),
			Quantity:    decimal.NewFromInt(12),
			CostPerUnit: decimal.RequireFromString("3.50"),
		})
		require.NoError(t, err)
		assert.Equal(t, testutil.Day(2024, 3, 1), resp.ReceivedAt)
		assert.True(t, resp.TotalValue.Equal(decimal.NewFromInt(42)))

		stored := repo.Get(resp.ID)
		assert.True(t, stored.Quantity.Equal(decimal.NewFromInt(12)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := store.AddBatch(context.Background(), AddBatchRequest{
			ProductID: testutil.NewTestUUID("1"),
			Quantity:  decimal.Zero,
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})

	t.Run("propagates repository failure", func(t *testing.T) {
		repo.Fail("Create", errors.New("disk full"))
		defer repo.Fail("Create", nil)

		_, err := store.AddBatch(context.Background(), AddBatchRequest{
			ProductID: testutil.NewTestUUID("1"),
			Quantity:  decimal.NewFromInt(1),
		})
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestBatchStore_SetBatchQuantity(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	id := testutil.NewTestUUID("10")
	repo.Put(batch(id, testutil.NewTestUUID("1"), "10", "1", testutil.Day(2024, 1, 1), nil))
	store := NewBatchStore(repo, nil)

	resp, err := store.SetBatchQuantity(context.Background(), id, decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(4)))

	_, err = store.SetBatchQuantity(context.Background(), id, decimal.NewFromInt(-1))
	assert.Error(t, err)

	_, err = store.SetBatchQuantity(context.Background(), testutil.NewTestUUID("99"), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBatchStore_ProductQueries(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	apple, pear := testutil.NewTestUUID("1"), testutil.NewTestUUID("2")
	repo.Put(
		batch(testutil.NewTestUUID("10"), apple, "4", "1", testutil.Day(2024, 1, 3), nil),
		batch(testutil.NewTestUUID("11"), apple, "6", "1", testutil.Day(2024, 1, 1), nil),
		batch(testutil.NewTestUUID("12"), pear, "9", "1", testutil.Day(2024, 1, 2), nil),
		batch(testutil.NewTestUUID("13"), apple, "0", "1", testutil.Day(2024, 1, 2), nil),
	)
	store := NewBatchStore(repo, nil)

	got, err := store.BatchesForProduct(context.Background(), apple)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, testutil.NewTestUUID("11"), got[0].ID)
	assert.Equal(t, testutil.NewTestUUID("13"), got[1].ID)
	assert.Equal(t, testutil.NewTestUUID("10"), got[2].ID)

	stock, err := store.TotalStock(context.Background(), apple)
	require.NoError(t, err)
	assert.True(t, stock.Total.Equal(decimal.NewFromInt(10)))

	stock, err = store.TotalStock(context.Background(), testutil.NewTestUUID("3"))
	require.NoError(t, err)
	assert.True(t, stock.Total.IsZero())
}

func TestBatchStore_ExpiringWithin(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	product := testutil.NewTestUUID("1")
	repo.Put(
		batch(testutil.NewTestUUID("10"), product, "1", "1", testutil.Day(2024, 1, 1), testutil.DayPtr(2024, 1, 12)),
		batch(testutil.NewTestUUID("11"), product, "1", "1", testutil.Day(2024, 1, 1), testutil.DayPtr(2024, 1, 10)),
		batch(testutil.NewTestUUID("12"), product, "1", "1", testutil.Day(2024, 1, 1), testutil.DayPtr(2024, 1, 20)),
		batch(testutil.NewTestUUID("13"), product, "1", "1", testutil.Day(2024, 1, 1), nil),
		batch(testutil.NewTestUUID("14"), product, "0", "1", testutil.Day(2024, 1, 1), testutil.DayPtr(2024, 1, 11)),
	)
	store := NewBatchStore(repo, nil)
	store.now = func() time.Time { return testutil.Day(2024, 1, 10).Add(15 * time.Hour) }

	got, err := store.ExpiringWithin(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, testutil.NewTestUUID("11"), got[0].ID)
	assert.Equal(t, testutil.NewTestUUID("10"), got[1].ID)

	_, err = store.ExpiringWithin(context.Background(), -1)
	assert.Error(t, err)
}
