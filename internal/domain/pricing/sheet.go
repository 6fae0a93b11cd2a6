package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item is one purchase order line as entered on the receiving screen
type Item struct {
	ItemID            uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	OrderedQuantity   decimal.Decimal
	ReceivedQuantity  *decimal.Decimal
	EstimatedKg       decimal.Decimal
	EstimatedUnitCost decimal.Decimal
	ActualUnitCost    *decimal.Decimal
	TareTotal         decimal.Decimal
	Packaging         string

	// Optional pricing override. SalePrice wins over Margin when both are set.
	Margin    *decimal.Decimal
	SalePrice *decimal.Decimal
}

// Quantity returns the received quantity, or the ordered one if none was entered
func (i Item) Quantity() decimal.Decimal {
	if i.ReceivedQuantity != nil {
		return *i.ReceivedQuantity
	}
	return i.OrderedQuantity
}

// UnitCost returns the actual unit cost, or the estimate if none was entered
func (i Item) UnitCost() decimal.Decimal {
	if i.ActualUnitCost != nil {
		return *i.ActualUnitCost
	}
	return i.EstimatedUnitCost
}

func (i Item) validate(n int) error {
	neg := func(v decimal.Decimal) bool { return v.IsNegative() }
	switch {
	case neg(i.OrderedQuantity), i.ReceivedQuantity != nil && neg(*i.ReceivedQuantity):
		return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Item %d: quantity cannot be negative", n))
	case neg(i.EstimatedKg), neg(i.TareTotal):
		return shared.NewDomainError("INVALID_WEIGHT", fmt.Sprintf("Item %d: weight cannot be negative", n))
	case neg(i.EstimatedUnitCost), i.ActualUnitCost != nil && neg(*i.ActualUnitCost):
		return shared.NewDomainError("INVALID_COST", fmt.Sprintf("Item %d: unit cost cannot be negative", n))
	case i.SalePrice != nil && neg(*i.SalePrice):
		return shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Item %d: sale price cannot be negative", n))
	}
	return nil
}

// Inputs are the order-level values typed during closing
type Inputs struct {
	Freight     decimal.Decimal
	OtherCosts  decimal.Decimal
	ScaleWeight *decimal.Decimal
}

// Line is the derived projection of one item
type Line struct {
	Item
	GrossWeight   decimal.Decimal
	NetWeight     decimal.Decimal
	BaseUnitCost  decimal.Decimal
	RealCostPerKg decimal.Decimal
	Margin        decimal.Decimal
	SalePrice     decimal.Decimal
	GoodsTotal    decimal.Decimal // received quantity × unit cost
	Volumes       decimal.Decimal
}

// Sheet is the closing protocol of a purchase order
type Sheet struct {
	cfg           Config
	inputs        Inputs
	lines         []Line
	totalNet      decimal.Decimal
	costRatePerKg decimal.Decimal
}

// NewSheet validates inputs and derives every line
func NewSheet(items []Item, in Inputs, cfg Config) (*Sheet, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Purchase order has no items")
	}
	if in.Freight.IsNegative() || in.OtherCosts.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Freight and other costs cannot be negative")
	}
	if in.ScaleWeight != nil && in.ScaleWeight.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Scale weight cannot be negative")
	}
	for n, item := range items {
		if err := item.validate(n + 1); err != nil {
			return nil, err
		}
	}

	s := &Sheet{cfg: cfg, inputs: in, lines: make([]Line, len(items))}

	s.totalNet = decimal.Zero
	for i, item := range items {
		gross := GrossWeight(item.EstimatedKg, item.OrderedQuantity, item.ReceivedQuantity)
		net := NetWeight(gross, item.TareTotal, cfg.NetWeightFloor)
		s.lines[i] = Line{
			Item:        item,
			GrossWeight: gross,
			NetWeight:   net,
			GoodsTotal:  item.Quantity().Mul(item.UnitCost()),
			Volumes:     item.Quantity(),
		}
		s.totalNet = s.totalNet.Add(net)
	}

	s.costRatePerKg = CostRatePerKg(in.Freight, in.OtherCosts, s.totalNet)

	for i := range s.lines {
		l := &s.lines[i]
		l.BaseUnitCost = BaseUnitCost(l.Quantity(), l.UnitCost(), l.NetWeight)
		l.RealCostPerKg = RealCostPerKg(l.BaseUnitCost, s.costRatePerKg)

		switch {
		case l.Item.SalePrice != nil:
			s.applyPrice(l, *l.Item.SalePrice)
		case l.Item.Margin != nil:
			s.applyMargin(l, *l.Item.Margin)
		default:
			s.applyMargin(l, cfg.DefaultMargin)
		}
	}

	return s, nil
}

// Lines returns a copy of the derived lines
func (s *Sheet) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Inputs returns the order-level inputs the sheet was built from
func (s *Sheet) Inputs() Inputs {
	return s.inputs
}

// CostRatePerKg returns the freight/other surcharge per net kg
func (s *Sheet) CostRatePerKg() decimal.Decimal {
	return s.costRatePerKg
}

// SetMargin edits a line's margin and recomputes its price
func (s *Sheet) SetMargin(i int, margin decimal.Decimal) error {
	if i < 0 || i >= len(s.lines) {
		return shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Line %d does not exist", i))
	}
	s.applyMargin(&s.lines[i], margin)
	return nil
}

// SetPrice edits a line's sale price and recomputes its margin
func (s *Sheet) SetPrice(i int, price decimal.Decimal) error {
	if i < 0 || i >= len(s.lines) {
		return shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Line %d does not exist", i))
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}
	s.applyPrice(&s.lines[i], price)
	return nil
}

func (s *Sheet) applyMargin(l *Line, margin decimal.Decimal) {
	l.Margin = ClampMargin(margin, s.cfg.MarginMin, s.cfg.MarginMax)
	l.SalePrice = PriceFromMargin(l.RealCostPerKg, l.Margin)
}

// applyPrice keeps the typed price unless the implied margin falls outside
// the bounds, in which case both fields follow the clamped margin.
func (s *Sheet) applyPrice(l *Line, price decimal.Decimal) {
	margin := MarginFromPrice(l.RealCostPerKg, price)
	clamped := ClampMargin(margin, s.cfg.MarginMin, s.cfg.MarginMax)
	if !clamped.Equal(margin) {
		s.applyMargin(l, clamped)
		return
	}
	l.Margin = margin
	l.SalePrice = price
}

// Totals summarizes the sheet
type Totals struct {
	GrossWeight    decimal.Decimal
	NetWeight      decimal.Decimal
	GoodsTotal     decimal.Decimal
	Freight        decimal.Decimal
	OtherCosts     decimal.Decimal
	TotalReceived  decimal.Decimal
	WeightedMargin decimal.Decimal
	Discrepancy    *Discrepancy
}

// Totals derives order-level figures from the current lines
func (s *Sheet) Totals() Totals {
	t := Totals{
		GrossWeight: decimal.Zero,
		NetWeight:   s.totalNet,
		GoodsTotal:  decimal.Zero,
		Freight:     s.inputs.Freight,
		OtherCosts:  s.inputs.OtherCosts,
	}

	margins := make([]decimal.Decimal, len(s.lines))
	nets := make([]decimal.Decimal, len(s.lines))
	for i, l := range s.lines {
		t.GrossWeight = t.GrossWeight.Add(l.GrossWeight)
		t.GoodsTotal = t.GoodsTotal.Add(l.GoodsTotal)
		margins[i] = l.Margin
		nets[i] = l.NetWeight
	}

	t.TotalReceived = t.GoodsTotal.Add(s.inputs.Freight).Add(s.inputs.OtherCosts)
	t.WeightedMargin = WeightedMargin(margins, nets)

	if s.inputs.ScaleWeight != nil {
		d := CheckWeightDiscrepancy(t.GrossWeight, *s.inputs.ScaleWeight, s.cfg.DiscrepancyThresholdPct)
		t.Discrepancy = &d
	}

	return t
}
