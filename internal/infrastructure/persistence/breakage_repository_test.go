package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/breakage"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormBreakageRepository(t *testing.T) {
	repo := NewGormBreakageRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()
	product := uuid.New()
	batchID := uuid.New()

	seed := []struct {
		reason breakage.Reason
		qty    string
		at     time.Time
		batch  *uuid.UUID
	}{
		{breakage.ReasonExpired, "2", testutil.Day(2024, 5, 1), &batchID},
		{breakage.ReasonDamaged, "1.5", testutil.Day(2024, 5, 2), nil},
		{breakage.ReasonExpired, "4", testutil.Day(2024, 5, 3), nil},
	}
	ids := make([]uuid.UUID, 0, len(seed))
	for _, s := range seed {
		b, err := breakage.NewBreakage(product, s.batch, decimal.RequireFromString(s.qty), decimal.NewFromInt(3), s.reason, "")
		require.NoError(t, err)
		b.CreatedAt, b.UpdatedAt = s.at, s.at
		require.NoError(t, repo.Create(ctx, b))
		ids = append(ids, b.ID)
	}

	t.Run("FindByID round trips snapshot cost", func(t *testing.T) {
		got, err := repo.FindByID(ctx, ids[0])
		require.NoError(t, err)
		require.NotNil(t, got.BatchID)
		assert.Equal(t, batchID, *got.BatchID)
		assert.True(t, got.TotalLoss.Equal(decimal.NewFromInt(6)))
		assert.Equal(t, breakage.ReasonExpired, got.Reason)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindAll filters by reason and period", func(t *testing.T) {
		reason := breakage.ReasonExpired
		got, total, err := repo.FindAll(ctx, breakage.Filter{Reason: &reason})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, got, 2)
		assert.Equal(t, ids[2], got[0].ID, "newest first by default")

		from, to := testutil.Day(2024, 5, 2), testutil.Day(2024, 5, 2).Add(time.Hour)
		got, total, err = repo.FindAll(ctx, breakage.Filter{From: &from, To: &to})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, ids[1], got[0].ID)
	})

	t.Run("FindAll paginates", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, breakage.Filter{Filter: shared.Filter{Page: 2, PageSize: 2, OrderBy: "created_at", OrderDir: "asc"}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, got, 1)
		assert.Equal(t, ids[2], got[0].ID)
	})

	t.Run("AttachPhoto", func(t *testing.T) {
		require.NoError(t, repo.AttachPhoto(ctx, ids[1], "breakages/x.jpg"))
		got, err := repo.FindByID(ctx, ids[1])
		require.NoError(t, err)
		assert.Equal(t, "breakages/x.jpg", got.PhotoKey)

		assert.ErrorIs(t, repo.AttachPhoto(ctx, uuid.New(), "k"), shared.ErrNotFound)
	})
}
