package breakage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReason(t *testing.T) {
	tests := []struct {
		in   string
		want Reason
	}{
		{"expired", ReasonExpired},
		{"Vencido", ReasonExpired},
		{"avariado", ReasonDamaged},
		{"furto", ReasonTheft},
		{" erro_operacional ", ReasonOperationalError},
		{"other", ReasonOther},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReason(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseReason("eaten")
	assert.Error(t, err)
}

func TestNewBreakage(t *testing.T) {
	productID := uuid.New()
	batchID := uuid.New()

	t.Run("computes total loss", func(t *testing.T) {
		b, err := NewBreakage(productID, &batchID, decimal.NewFromFloat(2.5), decimal.NewFromInt(5), ReasonDamaged, "caixa caiu")
		require.NoError(t, err)
		assert.True(t, b.TotalLoss.Equal(decimal.NewFromFloat(12.5)))
		assert.True(t, b.HasBatch())
	})

	t.Run("zero cost is allowed", func(t *testing.T) {
		b, err := NewBreakage(productID, nil, decimal.NewFromInt(1), decimal.Zero, ReasonOther, "")
		require.NoError(t, err)
		assert.True(t, b.TotalLoss.IsZero())
		assert.False(t, b.HasBatch())
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewBreakage(productID, nil, decimal.Zero, decimal.NewFromInt(1), ReasonOther, "")
		assert.Error(t, err)
	})

	t.Run("rejects unknown reason", func(t *testing.T) {
		_, err := NewBreakage(productID, nil, decimal.NewFromInt(1), decimal.NewFromInt(1), Reason("x"), "")
		assert.Error(t, err)
	})
}

func TestSummarize(t *testing.T) {
	p := uuid.New()
	b1, _ := NewBreakage(p, nil, decimal.NewFromInt(1), decimal.NewFromInt(3), ReasonExpired, "")
	b2, _ := NewBreakage(p, nil, decimal.NewFromInt(2), decimal.NewFromInt(3), ReasonDamaged, "")
	b3, _ := NewBreakage(p, nil, decimal.NewFromInt(4), decimal.NewFromInt(1), ReasonExpired, "")

	got := Summarize([]Breakage{*b1, *b2, *b3})

	require.Len(t, got, 2)
	assert.Equal(t, ReasonExpired, got[0].Reason)
	assert.Equal(t, 2, got[0].Count)
	assert.True(t, got[0].TotalLoss.Equal(decimal.NewFromInt(7)))
	assert.True(t, got[1].Quantity.Equal(decimal.NewFromInt(2)))
}
