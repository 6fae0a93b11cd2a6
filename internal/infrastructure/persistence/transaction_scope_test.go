package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	repos := NewRepositories(db)
	ctx := context.Background()

	b := newBatch(t, uuid.New(), "10", testutil.Day(2024, 1, 1), nil)
	require.NoError(t, repos.Batches.Create(ctx, b))

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := scope.Execute(ctx, func(tx appinv.TransactionalRepositories) error {
			require.NoError(t, tx.BatchRepo().SetQuantity(ctx, b.ID, decimal.NewFromInt(1)))
			require.NoError(t, tx.ProductRepo().Save(ctx, newProduct(t, "tmp", "Temporary")))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repos.Batches.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, got.Quantity.Equal(decimal.NewFromInt(10)))

		products, err := repos.Products.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("commits on success", func(t *testing.T) {
		err := scope.Execute(ctx, func(tx appinv.TransactionalRepositories) error {
			return tx.BatchRepo().SetQuantity(ctx, b.ID, decimal.NewFromInt(4))
		})
		require.NoError(t, err)

		got, err := repos.Batches.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, got.Quantity.Equal(decimal.NewFromInt(4)))
	})
}
