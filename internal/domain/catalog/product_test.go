package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates active product with upper-cased code", func(t *testing.T) {
		p, err := NewProduct("tom-01", "Tomate Italiano", UnitKilogram, 7)
		require.NoError(t, err)
		assert.Equal(t, "TOM-01", p.Code)
		assert.True(t, p.Active)
		assert.True(t, p.SalePrice.IsZero())
		assert.NotEqual(t, uuid.Nil, p.ID)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewProduct("  ", "Tomate", UnitKilogram, 7)
		assert.Error(t, err)
	})

	t.Run("rejects unknown unit", func(t *testing.T) {
		_, err := NewProduct("TOM", "Tomate", Unit("box"), 7)
		assert.Error(t, err)
	})

	t.Run("rejects negative shelf life", func(t *testing.T) {
		_, err := NewProduct("TOM", "Tomate", UnitKilogram, -1)
		assert.Error(t, err)
	})
}

func TestProduct_UpdatePricing(t *testing.T) {
	p, err := NewProduct("ALF", "Alface", UnitPiece, 3)
	require.NoError(t, err)

	require.NoError(t, p.UpdatePricing(decimal.NewFromInt(25), decimal.NewFromInt(10)))
	assert.True(t, p.SalePrice.Equal(decimal.NewFromInt(25)))
	assert.True(t, p.Margin().Equal(decimal.NewFromInt(60)))

	assert.Error(t, p.UpdatePricing(decimal.NewFromInt(-1), decimal.NewFromInt(10)))
	assert.Error(t, p.UpdatePricing(decimal.NewFromInt(1), decimal.NewFromInt(-10)))
}

func TestProduct_ExpiryFrom(t *testing.T) {
	received := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	p, _ := NewProduct("BAN", "Banana", UnitKilogram, 5)
	expiry := p.ExpiryFrom(received)
	require.NotNil(t, expiry)
	assert.Equal(t, time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC), *expiry)

	p.ShelfLifeDays = 0
	assert.Nil(t, p.ExpiryFrom(received))
}
