package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestNewStockBatch(t *testing.T) {
	productID := uuid.New()
	received := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("valid batch", func(t *testing.T) {
		b, err := NewStockBatch(productID, d("12.5"), d("4.20"), nil, received)
		require.NoError(t, err)
		assert.Equal(t, productID, b.ProductID)
		assert.True(t, b.Quantity.Equal(d("12.5")))
		assert.Equal(t, received, b.ReceivedAt)
	})

	t.Run("zero received_at defaults to now", func(t *testing.T) {
		b, err := NewStockBatch(productID, d("1"), d("1"), nil, time.Time{})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), b.ReceivedAt, time.Second)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewStockBatch(productID, decimal.Zero, d("1"), nil, received)
		assert.Error(t, err)
	})

	t.Run("rejects negative cost", func(t *testing.T) {
		_, err := NewStockBatch(productID, d("1"), d("-0.01"), nil, received)
		assert.Error(t, err)
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewStockBatch(uuid.Nil, d("1"), d("1"), nil, received)
		assert.Error(t, err)
	})
}

func TestStockBatch_Deduct(t *testing.T) {
	tests := []struct {
		name      string
		quantity  string
		deduct    string
		wantTaken string
		wantLeft  string
	}{
		{"partial", "10", "3", "3", "7"},
		{"exact", "10", "10", "10", "0"},
		{"more than available clamps at zero", "4", "6", "4", "0"},
		{"zero request", "4", "0", "0", "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &StockBatch{Quantity: d(tt.quantity)}
			taken := b.Deduct(d(tt.deduct))
			assert.True(t, taken.Equal(d(tt.wantTaken)), "taken=%s", taken)
			assert.True(t, b.Quantity.Equal(d(tt.wantLeft)), "left=%s", b.Quantity)
		})
	}
}

func TestStockBatch_Remove(t *testing.T) {
	b := &StockBatch{Quantity: d("2")}
	assert.True(t, b.Remove(d("5")).IsZero())
	assert.True(t, b.Remove(d("0.5")).Equal(d("1.5")))
	assert.True(t, b.Quantity.Equal(d("2")), "Remove must not mutate")
}

func TestStockBatch_Expiry(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	inThree := today.AddDate(0, 0, 3)
	inFive := today.AddDate(0, 0, 5)
	yesterday := today.AddDate(0, 0, -1)

	assert.True(t, (&StockBatch{ExpiryDate: &today}).ExpiresWithin(now, 3))
	assert.True(t, (&StockBatch{ExpiryDate: &inThree}).ExpiresWithin(now, 3))
	assert.False(t, (&StockBatch{ExpiryDate: &inFive}).ExpiresWithin(now, 3))
	assert.False(t, (&StockBatch{ExpiryDate: &yesterday}).ExpiresWithin(now, 3))
	assert.False(t, (&StockBatch{}).ExpiresWithin(now, 3))

	assert.True(t, (&StockBatch{ExpiryDate: &yesterday}).IsExpired(now))
	assert.False(t, (&StockBatch{ExpiryDate: &today}).IsExpired(now))
	assert.False(t, (&StockBatch{}).IsExpired(now))
}
