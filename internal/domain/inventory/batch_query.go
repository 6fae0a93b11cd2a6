package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The functions below operate on an already fetched snapshot of batches.
// None of them mutate their input.

// Available keeps batches with quantity > 0 ordered by expiry ascending,
// batches without expiry last. Ties fall back to received_at.
func Available(batches []StockBatch) []StockBatch {
	out := make([]StockBatch, 0, len(batches))
	for _, b := range batches {
		if b.HasStock() {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return expiryLess(out[i], out[j])
	})
	return out
}

// ForProduct returns the product's batches oldest received first.
// This ordering, not expiry, drives FIFO consumption.
func ForProduct(batches []StockBatch, productID uuid.UUID) []StockBatch {
	out := make([]StockBatch, 0)
	for _, b := range batches {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceivedAt.Before(out[j].ReceivedAt)
	})
	return out
}

// TotalStock sums quantity across the product's batches.
func TotalStock(batches []StockBatch, productID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, b := range batches {
		if b.ProductID == productID {
			total = total.Add(b.Quantity)
		}
	}
	return total
}

// ExpiringWithin returns batches with stock whose expiry lies in [now, now+days].
func ExpiringWithin(batches []StockBatch, now time.Time, days int) []StockBatch {
	out := make([]StockBatch, 0)
	for _, b := range batches {
		if b.HasStock() && b.ExpiresWithin(now, days) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return expiryLess(out[i], out[j])
	})
	return out
}

// Oldest returns the earliest received batch of the product, if any.
func Oldest(batches []StockBatch, productID uuid.UUID) (StockBatch, bool) {
	ordered := ForProduct(batches, productID)
	if len(ordered) == 0 {
		return StockBatch{}, false
	}
	return ordered[0], true
}

func expiryLess(a, b StockBatch) bool {
	switch {
	case a.ExpiryDate == nil && b.ExpiryDate == nil:
		return a.ReceivedAt.Before(b.ReceivedAt)
	case a.ExpiryDate == nil:
		return false
	case b.ExpiryDate == nil:
		return true
	case a.ExpiryDate.Equal(*b.ExpiryDate):
		return a.ReceivedAt.Before(b.ReceivedAt)
	default:
		return a.ExpiryDate.Before(*b.ExpiryDate)
	}
}
