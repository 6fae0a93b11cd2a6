package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
	"github.com/hortifruti/backend/internal/interfaces/http/dto"
	"github.com/hortifruti/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryHandler_ListBatches(t *testing.T) {
	e := newTestEnv(t)
	older, newer, other := e.seedBatches()

	w := e.perform(t, testutil.Request{Path: "/api/v1/inventory/batches"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.Decode[[]appinv.BatchResponse](t, w)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, []uuid.UUID{older, newer, other}, []uuid.UUID{resp.Data[0].ID, resp.Data[1].ID, resp.Data[2].ID},
		"earliest expiry first, no expiry last")
}

func TestInventoryHandler_AddBatch(t *testing.T) {
	e := newTestEnv(t)

	t.Run("created", func(t *testing.T) {
		w := e.perform(t, testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/inventory/batches",
			Body: map[string]any{
				"product_id":    banana.String(),
				"quantity":      "12.5",
				"cost_per_unit": "2.8",
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := testutil.Decode[appinv.BatchResponse](t, w)
		assert.True(t, resp.Data.Quantity.Equal(testutil.Dec("12.5")))
		assert.Len(t, e.batches.All(), 1)
	})

	t.Run("missing quantity", func(t *testing.T) {
		w := e.perform(t, testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/inventory/batches",
			Body:   map[string]any{"product_id": banana.String()},
		})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("negative quantity", func(t *testing.T) {
		w := e.perform(t, testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/inventory/batches",
			Body:   map[string]any{"product_id": banana.String(), "quantity": "-1"},
		})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_INVALID_QUANTITY")
	})
}

func TestInventoryHandler_SetBatchQuantity(t *testing.T) {
	e := newTestEnv(t)
	older, _, _ := e.seedBatches()

	w := e.perform(t, testutil.Request{
		Method: http.MethodPut,
		Path:   "/api/v1/inventory/batches/" + older.String() + "/quantity",
		Body:   map[string]any{"quantity": "0"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, e.batches.Get(older).Quantity.IsZero())

	w = e.perform(t, testutil.Request{
		Method: http.MethodPut,
		Path:   "/api/v1/inventory/batches/" + uuid.New().String() + "/quantity",
		Body:   map[string]any{"quantity": "1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.perform(t, testutil.Request{
		Method: http.MethodPut,
		Path:   "/api/v1/inventory/batches/not-a-uuid/quantity",
		Body:   map[string]any{"quantity": "1"},
	})
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
}

func TestInventoryHandler_ExpiringBatches(t *testing.T) {
	e := newTestEnv(t)
	older, _, _ := e.seedBatches()

	w := e.perform(t, testutil.Request{Path: "/api/v1/inventory/batches/expiring?days=3"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.Decode[[]appinv.BatchResponse](t, w)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, older, resp.Data[0].ID)

	w = e.perform(t, testutil.Request{Path: "/api/v1/inventory/batches/expiring?days=abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.perform(t, testutil.Request{Path: "/api/v1/inventory/batches/expiring?days=-1"})
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_INVALID_DAYS")
}

func TestInventoryHandler_ProductQueries(t *testing.T) {
	e := newTestEnv(t)
	older, newer, _ := e.seedBatches()

	w := e.perform(t, testutil.Request{Path: "/api/v1/inventory/products/" + banana.String() + "/batches"})
	require.Equal(t, http.StatusOK, w.Code)
	batches := testutil.Decode[[]appinv.BatchResponse](t, w)
	require.Len(t, batches.Data, 2)
	assert.Equal(t, older, batches.Data[0].ID)
	assert.Equal(t, newer, batches.Data[1].ID)

	w = e.perform(t, testutil.Request{Path: "/api/v1/inventory/products/" + banana.String() + "/stock"})
	require.Equal(t, http.StatusOK, w.Code)
	stock := testutil.Decode[appinv.StockResponse](t, w)
	assert.True(t, stock.Data.Total.Equal(testutil.Dec("15")))
}

func TestInventoryHandler_Deduct(t *testing.T) {
	e := newTestEnv(t)
	older, newer, _ := e.seedBatches()

	t.Run("spans batches oldest first", func(t *testing.T) {
		w := e.perform(t, testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/inventory/products/" + banana.String() + "/deduct",
			Body:   map[string]any{"quantity": "7"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := testutil.Decode[appinv.DeductionResult](t, w)
		assert.True(t, resp.Data.Satisfied)
		assert.True(t, e.batches.Get(older).Quantity.IsZero())
		assert.True(t, e.batches.Get(newer).Quantity.Equal(testutil.Dec("8")))
	})

	t.Run("oversell is reported not rejected", func(t *testing.T) {
		w := e.perform(t, testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/inventory/products/" + banana.String() + "/deduct",
			Body:   map[string]any{"quantity": "20"},
		})
		require.Equal(t, http.StatusOK, w.Code)

		resp := testutil.Decode[appinv.DeductionResult](t, w)
		assert.False(t, resp.Data.Satisfied)
		assert.True(t, resp.Data.Remaining.Equal(testutil.Dec("12")))
	})

	t.Run("zero quantity", func(t *testing.T) {
		w := e.perform(t, testutil.Request{
			Method: http.MethodPost,
			Path:   "/api/v1/inventory/products/" + banana.String() + "/deduct",
			Body:   map[string]any{"quantity": "0"},
		})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})
}
