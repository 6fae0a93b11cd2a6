package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockDeductionObserver struct {
	mock.Mock
}

func (m *MockDeductionObserver) ObserveDeduction(requested, deducted decimal.Decimal) {
	m.Called(requested, deducted)
}

func (m *MockDeductionObserver) ObserveDeductionConflict() {
	m.Called()
}

func decimalEq(s string) any {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

var (
	productA = testutil.NewTestUUID("product-a")
	batchOld = testutil.NewTestUUID("batch-old")
	batchNew = testutil.NewTestUUID("batch-new")
)

// seedTwoBatches stores 5 @ 2.00 received Jan 1 and 10 @ 3.00 received Jan 2.
// The newer batch is put first so ordering cannot come from insertion.
func seedTwoBatches(repo *testutil.MemBatchRepo) {
	repo.Put(
		batch(batchNew, productA, "10", "3", testutil.Day(2024, 1, 2), nil),
		batch(batchOld, productA, "5", "2", testutil.Day(2024, 1, 1), nil),
	)
}

func stockOf(repo *testutil.MemBatchRepo, productID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, b := range repo.All() {
		if b.ProductID == productID {
			total = total.Add(b.Quantity)
		}
	}
	return total
}

func TestFIFODeductor_ConsumesOldestFirst(t *testing.T) {
	for _, mode := range []DeductionMode{ModeSnapshot, ModeAtomic} {
		t.Run(string(mode), func(t *testing.T) {
			repo := testutil.NewMemBatchRepo(nil)
			seedTwoBatches(repo)
			d := NewFIFODeductor(repo, nil, WithMode(mode))

			result, err := d.Deduct(context.Background(), productA, decimal.NewFromInt(8))
			require.NoError(t, err)

			assert.True(t, result.Satisfied)
			assert.True(t, result.Deducted.Equal(decimal.NewFromInt(8)))
			assert.True(t, result.Remaining.IsZero())
			assert.True(t, result.Cost.Equal(decimal.NewFromInt(19)), "5×2 + 3×3, got %s", result.Cost)

			require.Len(t, result.Steps, 2)
			assert.Equal(t, batchOld, result.Steps[0].BatchID)
			assert.True(t, result.Steps[0].After.IsZero())
			assert.Equal(t, batchNew, result.Steps[1].BatchID)
			assert.True(t, result.Steps[1].After.Equal(decimal.NewFromInt(7)))

			assert.True(t, repo.Get(batchOld).Quantity.IsZero())
			assert.True(t, repo.Get(batchNew).Quantity.Equal(decimal.NewFromInt(7)))
		})
	}
}

func TestFIFODeductor_Conservation(t *testing.T) {
	quantities := []string{"0.5", "4.75", "5", "7.125", "15", "22"}
	for _, q := range quantities {
		t.Run(q, func(t *testing.T) {
			repo := testutil.NewMemBatchRepo(nil)
			seedTwoBatches(repo)
			before := stockOf(repo, productA)

			result, err := NewFIFODeductor(repo, nil).Deduct(context.Background(), productA, decimal.RequireFromString(q))
			require.NoError(t, err)

			after := stockOf(repo, productA)
			assert.True(t, before.Sub(after).Equal(result.Deducted))
			assert.True(t, result.Deducted.Add(result.Remaining).Equal(result.Requested))
			for _, b := range repo.All() {
				assert.False(t, b.Quantity.IsNegative())
			}
		})
	}
}

func TestFIFODeductor_Shortfall(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	seedTwoBatches(repo)

	obs := new(MockDeductionObserver)
	obs.On("ObserveDeduction", decimalEq("20"), decimalEq("15")).Once()

	core, logs := observer.New(zap.WarnLevel)
	d := NewFIFODeductor(repo, zap.New(core), WithObserver(obs))

	result, err := d.Deduct(context.Background(), productA, decimal.NewFromInt(20))
	require.NoError(t, err)

	assert.False(t, result.Satisfied)
	assert.True(t, result.Deducted.Equal(decimal.NewFromInt(15)))
	assert.True(t, result.Remaining.Equal(decimal.NewFromInt(5)))
	assert.True(t, stockOf(repo, productA).IsZero())
	assert.Equal(t, 1, logs.FilterMessage("deduction exceeded available stock").Len())
	obs.AssertExpectations(t)
}

func TestFIFODeductor_NoBatches(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	result, err := NewFIFODeductor(repo, nil).Deduct(context.Background(), productA, decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.False(t, result.Satisfied)
	assert.True(t, result.Deducted.IsZero())
	assert.Empty(t, result.Steps)
}

func TestFIFODeductor_InvalidInput(t *testing.T) {
	d := NewFIFODeductor(testutil.NewMemBatchRepo(nil), nil)

	_, err := d.Deduct(context.Background(), uuid.Nil, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_PRODUCT", ""))

	_, err = d.Deduct(context.Background(), productA, decimal.Zero)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_QUANTITY", ""))
}

// failAfterRepo lets the first n SetQuantity calls through
type failAfterRepo struct {
	*testutil.MemBatchRepo
	n int
}

func (r *failAfterRepo) SetQuantity(ctx context.Context, id uuid.UUID, q decimal.Decimal) error {
	if r.n == 0 {
		return errors.New("connection reset")
	}
	r.n--
	return r.MemBatchRepo.SetQuantity(ctx, id, q)
}

func TestFIFODeductor_PartialResultOnWriteError(t *testing.T) {
	mem := testutil.NewMemBatchRepo(nil)
	seedTwoBatches(mem)
	repo := &failAfterRepo{MemBatchRepo: mem, n: 1}

	result, err := NewFIFODeductor(repo, nil).Deduct(context.Background(), productA, decimal.NewFromInt(8))
	require.Error(t, err)
	require.NotNil(t, result)

	require.Len(t, result.Steps, 1)
	assert.Equal(t, batchOld, result.Steps[0].BatchID)
	assert.True(t, result.Deducted.Equal(decimal.NewFromInt(5)))
	assert.False(t, result.Satisfied)
	assert.True(t, mem.Get(batchOld).Quantity.IsZero())
	assert.True(t, mem.Get(batchNew).Quantity.Equal(decimal.NewFromInt(10)))
}

func TestFIFODeductor_AtomicReplansAfterConflict(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	seedTwoBatches(repo)

	var once sync.Once
	repo.BeforeDecrement = func(id uuid.UUID) {
		once.Do(func() {
			// a competing sale takes 3 of the old batch
			require.NoError(t, repo.SetQuantity(context.Background(), batchOld, decimal.NewFromInt(2)))
		})
	}

	obs := new(MockDeductionObserver)
	obs.On("ObserveDeductionConflict").Once()
	obs.On("ObserveDeduction", decimalEq("8"), decimalEq("8")).Once()

	d := NewFIFODeductor(repo, nil, WithMode(ModeAtomic), WithObserver(obs))
	result, err := d.Deduct(context.Background(), productA, decimal.NewFromInt(8))
	require.NoError(t, err)

	assert.True(t, result.Satisfied)
	require.Len(t, result.Steps, 2)
	assert.True(t, result.Steps[0].Taken.Equal(decimal.NewFromInt(2)))
	assert.True(t, result.Steps[1].Taken.Equal(decimal.NewFromInt(6)))
	assert.True(t, repo.Get(batchOld).Quantity.IsZero())
	assert.True(t, repo.Get(batchNew).Quantity.Equal(decimal.NewFromInt(4)))
	obs.AssertExpectations(t)
}

func TestFIFODeductor_AtomicGivesUpAfterMaxAttempts(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	seedTwoBatches(repo)
	repo.BeforeDecrement = func(id uuid.UUID) {
		_ = repo.SetQuantity(context.Background(), id, decimal.Zero)
	}

	obs := new(MockDeductionObserver)
	obs.On("ObserveDeductionConflict").Twice()
	obs.On("ObserveDeduction", decimalEq("8"), decimalEq("0")).Once()

	d := NewFIFODeductor(repo, nil, WithMode(ModeAtomic), WithMaxAttempts(2), WithObserver(obs))
	result, err := d.Deduct(context.Background(), productA, decimal.NewFromInt(8))
	require.NoError(t, err)

	assert.False(t, result.Satisfied)
	assert.True(t, result.Deducted.IsZero())
	obs.AssertExpectations(t)
}

func TestFIFODeductor_AtomicConcurrentDeductionsConserveStock(t *testing.T) {
	repo := testutil.NewMemBatchRepo(nil)
	seedTwoBatches(repo)
	d := NewFIFODeductor(repo, nil, WithMode(ModeAtomic), WithMaxAttempts(20))

	const workers = 6
	results := make([]*DeductionResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := d.Deduct(context.Background(), productA, decimal.NewFromInt(4))
			if err == nil {
				results[i] = r
			}
		}(i)
	}
	wg.Wait()

	deducted := decimal.Zero
	for _, r := range results {
		require.NotNil(t, r)
		deducted = deducted.Add(r.Deducted)
	}
	assert.True(t, deducted.Add(stockOf(repo, productA)).Equal(decimal.NewFromInt(15)),
		"deducted %s, left %s", deducted, stockOf(repo, productA))
	for _, b := range repo.All() {
		assert.False(t, b.Quantity.IsNegative())
	}
}
