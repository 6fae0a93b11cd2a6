package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBatch(t *testing.T, productID uuid.UUID, qty string, received time.Time, expiry *time.Time) *inventory.StockBatch {
	t.Helper()
	b, err := inventory.NewStockBatch(productID, decimal.RequireFromString(qty), decimal.RequireFromString("2.5"), expiry, received)
	require.NoError(t, err)
	return b
}

func TestGormStockBatchRepository_Queries(t *testing.T) {
	repo := NewGormStockBatchRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()
	product := uuid.New()

	late := newBatch(t, product, "3", testutil.Day(2024, 1, 3), nil)
	early := newBatch(t, product, "5", testutil.Day(2024, 1, 1), testutil.DayPtr(2024, 1, 20))
	middle := newBatch(t, product, "4", testutil.Day(2024, 1, 2), testutil.DayPtr(2024, 1, 10))
	other := newBatch(t, uuid.New(), "9", testutil.Day(2024, 1, 1), nil)
	for _, b := range []*inventory.StockBatch{late, early, middle, other} {
		require.NoError(t, repo.Create(ctx, b))
	}
	require.NoError(t, repo.SetQuantity(ctx, other.ID, decimal.Zero))

	t.Run("FindByProduct orders by received_at", func(t *testing.T) {
		got, err := repo.FindByProduct(ctx, product)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, early.ID, got[0].ID)
		assert.Equal(t, middle.ID, got[1].ID)
		assert.Equal(t, late.ID, got[2].ID)
		assert.True(t, got[0].Quantity.Equal(decimal.NewFromInt(5)))
	})

	t.Run("FindAvailable skips empty and orders by expiry", func(t *testing.T) {
		got, err := repo.FindAvailable(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, middle.ID, got[0].ID)
		assert.Equal(t, early.ID, got[1].ID)
		assert.Equal(t, late.ID, got[2].ID)
	})

	t.Run("FindByID maps missing rows to ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("SetQuantity on missing batch", func(t *testing.T) {
		assert.ErrorIs(t, repo.SetQuantity(ctx, uuid.New(), decimal.NewFromInt(1)), shared.ErrNotFound)
	})
}

func TestGormStockBatchRepository_DecrementQuantity(t *testing.T) {
	repo := NewGormStockBatchRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()
	b := newBatch(t, uuid.New(), "5", testutil.Day(2024, 1, 1), nil)
	require.NoError(t, repo.Create(ctx, b))

	ok, err := repo.DecrementQuantity(ctx, b.ID, decimal.RequireFromString("3.5"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementQuantity(ctx, b.ID, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.False(t, ok, "only 1.5 left")

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("1.5")), "got %s", got.Quantity)
}

func TestGormStockBatchRepository_DecrementQuantitySQL(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	repo := NewGormStockBatchRepository(mdb.DB)
	id := uuid.New()
	amount := decimal.NewFromInt(2)

	mdb.Mock.ExpectExec(`UPDATE "stock_batches" SET "quantity"=quantity - \$1,"updated_at"=\$2 WHERE id = \$3 AND quantity >= \$4`).
		WithArgs(amount, sqlmock.AnyArg(), id, amount).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DecrementQuantity(context.Background(), id, amount)
	require.NoError(t, err)
	assert.False(t, ok)
	mdb.ExpectationsWereMet(t)
}
