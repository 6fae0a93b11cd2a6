package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// ClosingItemInput holds what the receiver typed for one order line.
// Nil fields fall back to the order values.
type ClosingItemInput struct {
	ItemID           uuid.UUID        `json:"item_id" binding:"required"`
	ReceivedQuantity *decimal.Decimal `json:"received_quantity"`
	ActualUnitCost   *decimal.Decimal `json:"actual_unit_cost"`
	Margin           *decimal.Decimal `json:"margin"`
	SalePrice        *decimal.Decimal `json:"sale_price"`
}

// ClosingRequest holds the order-level inputs of the receiving screen
type ClosingRequest struct {
	Freight     decimal.Decimal    `json:"freight"`
	OtherCosts  decimal.Decimal    `json:"other_costs"`
	ScaleWeight *decimal.Decimal   `json:"scale_weight"`
	Items       []ClosingItemInput `json:"items" binding:"dive"`
}

func (r ClosingRequest) inputs() pricing.Inputs {
	return pricing.Inputs{Freight: r.Freight, OtherCosts: r.OtherCosts, ScaleWeight: r.ScaleWeight}
}

// ClosingLineResponse is the derived projection of one order line
type ClosingLineResponse struct {
	ItemID        uuid.UUID       `json:"item_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Packaging     string          `json:"packaging,omitempty"`
	Volumes       decimal.Decimal `json:"volumes"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	GrossWeight   decimal.Decimal `json:"gross_weight"`
	TareTotal     decimal.Decimal `json:"tare_total"`
	NetWeight     decimal.Decimal `json:"net_weight"`
	GoodsTotal    decimal.Decimal `json:"goods_total"`
	BaseUnitCost  decimal.Decimal `json:"base_unit_cost"`
	RealCostPerKg decimal.Decimal `json:"real_cost_per_kg"`
	Margin        decimal.Decimal `json:"margin"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

// DiscrepancyResponse compares invoice and scale weight
type DiscrepancyResponse struct {
	NoteWeight  decimal.Decimal `json:"note_weight"`
	ScaleWeight decimal.Decimal `json:"scale_weight"`
	Difference  decimal.Decimal `json:"difference"`
	Percent     decimal.Decimal `json:"percent"`
	Material    bool            `json:"material"`
}

// TotalsResponse summarizes a closing sheet
type TotalsResponse struct {
	GrossWeight    decimal.Decimal      `json:"gross_weight"`
	NetWeight      decimal.Decimal      `json:"net_weight"`
	GoodsTotal     decimal.Decimal      `json:"goods_total"`
	Freight        decimal.Decimal      `json:"freight"`
	OtherCosts     decimal.Decimal      `json:"other_costs"`
	TotalReceived  decimal.Decimal      `json:"total_received"`
	WeightedMargin decimal.Decimal      `json:"weighted_margin"`
	Discrepancy    *DiscrepancyResponse `json:"discrepancy,omitempty"`
}

// ClosingSheetResponse is the closing protocol of an order
type ClosingSheetResponse struct {
	OrderID       uuid.UUID             `json:"order_id"`
	OrderNumber   string                `json:"order_number"`
	SupplierName  string                `json:"supplier_name"`
	Status        string                `json:"status"`
	CostRatePerKg decimal.Decimal       `json:"cost_rate_per_kg"`
	Lines         []ClosingLineResponse `json:"lines"`
	Totals        TotalsResponse        `json:"totals"`
	Notes         string                `json:"notes,omitempty"`
}

// ApprovalResponse reports the result of approving an order
type ApprovalResponse struct {
	Sheet    ClosingSheetResponse `json:"sheet"`
	BatchIDs []uuid.UUID          `json:"batch_ids"`
	ClosedAt time.Time            `json:"closed_at"`
}

func toSheetResponse(h orderHeader, sheet *pricing.Sheet) ClosingSheetResponse {
	lines := sheet.Lines()
	resp := ClosingSheetResponse{
		OrderID:       h.id,
		OrderNumber:   h.number,
		SupplierName:  h.supplier,
		Status:        h.status,
		CostRatePerKg: sheet.CostRatePerKg(),
		Lines:         make([]ClosingLineResponse, len(lines)),
		Notes:         sheet.Notes(),
	}
	for i, l := range lines {
		resp.Lines[i] = ClosingLineResponse{
			ItemID:        l.ItemID,
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			Packaging:     l.Packaging,
			Volumes:       l.Volumes,
			UnitCost:      l.UnitCost(),
			GrossWeight:   l.GrossWeight,
			TareTotal:     l.TareTotal,
			NetWeight:     l.NetWeight,
			GoodsTotal:    l.GoodsTotal,
			BaseUnitCost:  l.BaseUnitCost,
			RealCostPerKg: l.RealCostPerKg,
			Margin:        l.Margin,
			SalePrice:     l.SalePrice,
		}
	}

	t := sheet.Totals()
	resp.Totals = TotalsResponse{
		GrossWeight:    t.GrossWeight,
		NetWeight:      t.NetWeight,
		GoodsTotal:     t.GoodsTotal,
		Freight:        t.Freight,
		OtherCosts:     t.OtherCosts,
		TotalReceived:  t.TotalReceived,
		WeightedMargin: t.WeightedMargin,
	}
	if d := t.Discrepancy; d != nil {
		resp.Totals.Discrepancy = &DiscrepancyResponse{
			NoteWeight:  d.NoteWeight,
			ScaleWeight: d.ScaleWeight,
			Difference:  d.Difference,
			Percent:     d.Percent,
			Material:    d.Material,
		}
	}
	return resp
}
