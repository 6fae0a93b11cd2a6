package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/catalog"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, code, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, name, catalog.UnitKilogram, 7)
	require.NoError(t, err)
	return p
}

func TestGormProductRepository(t *testing.T) {
	repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	banana := newProduct(t, "ban", "Banana prata")
	apple := newProduct(t, "apl", "Apple fuji")
	require.NoError(t, repo.Save(ctx, banana))
	require.NoError(t, repo.Save(ctx, apple))

	t.Run("Save upserts", func(t *testing.T) {
		banana.Name = "Banana nanica"
		require.NoError(t, repo.Save(ctx, banana))

		got, err := repo.FindByID(ctx, banana.ID)
		require.NoError(t, err)
		assert.Equal(t, "Banana nanica", got.Name)
		assert.Equal(t, "BAN", got.Code)
		assert.Equal(t, 7, got.ShelfLifeDays)
	})

	t.Run("FindAll orders by name", func(t *testing.T) {
		got, err := repo.FindAll(ctx, shared.Filter{OrderBy: "name", OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, apple.ID, got[0].ID)
	})

	t.Run("FindByIDs ignores unknown ids", func(t *testing.T) {
		got, err := repo.FindByIDs(ctx, []uuid.UUID{apple.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, got, 1)

		got, err = repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UpdatePricing", func(t *testing.T) {
		require.NoError(t, repo.UpdatePricing(ctx, apple.ID, decimal.RequireFromString("9.99"), decimal.RequireFromString("6.5")))
		got, err := repo.FindByID(ctx, apple.ID)
		require.NoError(t, err)
		assert.True(t, got.SalePrice.Equal(decimal.RequireFromString("9.99")))
		assert.True(t, got.CostPrice.Equal(decimal.RequireFromString("6.5")))

		assert.ErrorIs(t, repo.UpdatePricing(ctx, uuid.New(), decimal.Zero, decimal.Zero), shared.ErrNotFound)
	})
}
