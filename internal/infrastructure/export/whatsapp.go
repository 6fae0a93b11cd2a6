package export

import (
	"fmt"
	"strings"

	"github.com/hortifruti/backend/internal/domain/pricing"
)

// ClosingText renders the closing protocol as a WhatsApp message.
// Asterisks mark bold text in WhatsApp.
func ClosingText(h ClosingHeader, sheet *pricing.Sheet) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Recebimento pedido %s*\n", h.OrderNumber)
	if h.SupplierName != "" {
		fmt.Fprintf(&sb, "Fornecedor: %s\n", h.SupplierName)
	}
	if !h.ClosedAt.IsZero() {
		fmt.Fprintf(&sb, "Data: %s\n", h.ClosedAt.Format("02/01/2006 15:04"))
	}
	sb.WriteString("\n")

	for _, l := range sheet.Lines() {
		fmt.Fprintf(&sb, "- %s: %s líq. | custo %s/kg | venda %s (%s)\n",
			l.ProductName,
			pricing.FormatWeight(l.NetWeight),
			pricing.FormatMoney(l.RealCostPerKg),
			pricing.FormatMoney(l.SalePrice),
			pricing.FormatPercent(l.Margin),
		)
	}

	t := sheet.Totals()
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Peso líquido: %s\n", pricing.FormatWeight(t.NetWeight))
	fmt.Fprintf(&sb, "Mercadorias: %s\n", pricing.FormatMoney(t.GoodsTotal))
	if t.Freight.IsPositive() {
		fmt.Fprintf(&sb, "Frete: %s\n", pricing.FormatMoney(t.Freight))
	}
	if t.OtherCosts.IsPositive() {
		fmt.Fprintf(&sb, "Outros custos: %s\n", pricing.FormatMoney(t.OtherCosts))
	}
	fmt.Fprintf(&sb, "Margem média: %s\n", pricing.FormatPercent(t.WeightedMargin))
	fmt.Fprintf(&sb, "*Total: %s*", pricing.FormatMoney(t.TotalReceived))

	if d := t.Discrepancy; d != nil && d.Material {
		fmt.Fprintf(&sb, "\n\n⚠️ Divergência de peso: nota %s, balança %s (%s)",
			pricing.FormatWeight(d.NoteWeight),
			pricing.FormatWeight(d.ScaleWeight),
			pricing.FormatPercent(d.Percent),
		)
	}

	return sb.String()
}
