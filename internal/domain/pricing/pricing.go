// Package pricing derives real cost per kg and sale prices for a purchase
// order being received. Every function is pure; the closing sheet only keeps
// inputs and recomputes derived values from them.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Config holds the tunable bounds of the derivation
type Config struct {
	NetWeightFloor          decimal.Decimal
	MarginMin               decimal.Decimal
	MarginMax               decimal.Decimal
	DefaultMargin           decimal.Decimal
	DiscrepancyThresholdPct decimal.Decimal
}

// DefaultConfig returns the bounds used on the store floor
func DefaultConfig() Config {
	return Config{
		NetWeightFloor:          decimal.RequireFromString("0.1"),
		MarginMin:               decimal.RequireFromString("0.1"),
		MarginMax:               decimal.RequireFromString("99.9"),
		DefaultMargin:           decimal.NewFromInt(30),
		DiscrepancyThresholdPct: decimal.NewFromInt(5),
	}
}

// GrossWeight scales the estimated weight to the received quantity.
// Without a received quantity, or without an ordered quantity to scale
// against, the estimate is used as is.
func GrossWeight(estimatedKg, orderedQty decimal.Decimal, receivedQty *decimal.Decimal) decimal.Decimal {
	if receivedQty == nil || !orderedQty.IsPositive() {
		return estimatedKg
	}
	return receivedQty.Mul(estimatedKg.Div(orderedQty))
}

// NetWeight returns gross − tare, never below floor
func NetWeight(gross, tare, floor decimal.Decimal) decimal.Decimal {
	return decimal.Max(floor, gross.Sub(tare))
}

// CostRatePerKg spreads freight and other costs uniformly over the total
// net weight, so each line carries a share proportional to its weight.
func CostRatePerKg(freight, otherCosts, totalNetWeight decimal.Decimal) decimal.Decimal {
	if !totalNetWeight.IsPositive() {
		return decimal.Zero
	}
	return freight.Add(otherCosts).Div(totalNetWeight)
}

// BaseUnitCost is the goods cost of a line divided by its net weight
func BaseUnitCost(receivedQty, unitCost, netWeight decimal.Decimal) decimal.Decimal {
	if !netWeight.IsPositive() {
		return decimal.Zero
	}
	return receivedQty.Mul(unitCost).Div(netWeight)
}

// RealCostPerKg adds the apportioned surcharge to the base unit cost
func RealCostPerKg(baseUnitCost, costRatePerKg decimal.Decimal) decimal.Decimal {
	return baseUnitCost.Add(costRatePerKg)
}

// ClampMargin bounds m to [min, max]
func ClampMargin(m, min, max decimal.Decimal) decimal.Decimal {
	if m.LessThan(min) {
		return min
	}
	if m.GreaterThan(max) {
		return max
	}
	return m
}

// PriceFromMargin returns cost / (1 − margin/100). The margin must already be
// clamped below 100.
func PriceFromMargin(cost, margin decimal.Decimal) decimal.Decimal {
	divisor := decimal.NewFromInt(1).Sub(margin.Div(hundred))
	if !divisor.IsPositive() {
		return decimal.Zero
	}
	return cost.Div(divisor)
}

// MarginFromPrice returns (1 − cost/price) × 100. A non-positive price has no
// meaningful margin and yields zero.
func MarginFromPrice(cost, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(cost.Div(price)).Mul(hundred)
}

// WeightedMargin returns Σ(margin·net) / Σ net
func WeightedMargin(margins, netWeights []decimal.Decimal) decimal.Decimal {
	num, den := decimal.Zero, decimal.Zero
	for i := range margins {
		if i >= len(netWeights) {
			break
		}
		num = num.Add(margins[i].Mul(netWeights[i]))
		den = den.Add(netWeights[i])
	}
	if !den.IsPositive() {
		return decimal.Zero
	}
	return num.Div(den)
}

// Discrepancy compares the scale weight with the weight on the invoice
type Discrepancy struct {
	NoteWeight  decimal.Decimal
	ScaleWeight decimal.Decimal
	Difference  decimal.Decimal // scale − note
	Percent     decimal.Decimal // |difference| / note × 100
	Material    bool
}

// CheckWeightDiscrepancy flags a material discrepancy when
// |scale − note| > thresholdPct% of note.
func CheckWeightDiscrepancy(noteWeight, scaleWeight, thresholdPct decimal.Decimal) Discrepancy {
	diff := scaleWeight.Sub(noteWeight)
	d := Discrepancy{
		NoteWeight:  noteWeight,
		ScaleWeight: scaleWeight,
		Difference:  diff,
		Percent:     decimal.Zero,
	}
	if !noteWeight.IsPositive() {
		d.Material = !diff.IsZero()
		return d
	}
	d.Percent = diff.Abs().Div(noteWeight).Mul(hundred)
	d.Material = diff.Abs().GreaterThan(noteWeight.Mul(thresholdPct).Div(hundred))
	return d
}
