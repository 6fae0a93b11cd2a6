package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatMoney renders v as Brazilian reais, e.g. "R$ 1.234,50"
func FormatMoney(v decimal.Decimal) string {
	return brl.Sprintf("R$ %.2f", v.Round(2).InexactFloat64())
}

// FormatWeight renders v in kilograms with two decimals
func FormatWeight(v decimal.Decimal) string {
	return brl.Sprintf("%.2f kg", v.Round(2).InexactFloat64())
}

// FormatPercent renders v with one decimal and a percent sign
func FormatPercent(v decimal.Decimal) string {
	return brl.Sprintf("%.1f%%", v.Round(1).InexactFloat64())
}

// Notes builds the annotations stored on the purchase order when it closes.
// Zero freight or other costs are left out, as is the scale check when no
// scale weight was entered.
func (s *Sheet) Notes() string {
	parts := make([]string, 0, 3)
	if s.inputs.Freight.IsPositive() {
		parts = append(parts, "Frete: "+FormatMoney(s.inputs.Freight))
	}
	if s.inputs.OtherCosts.IsPositive() {
		parts = append(parts, "Outros custos: "+FormatMoney(s.inputs.OtherCosts))
	}
	if d := s.Totals().Discrepancy; d != nil {
		note := "Peso balança: " + FormatWeight(d.ScaleWeight) +
			" (nota: " + FormatWeight(d.NoteWeight) +
			", divergência " + FormatPercent(d.Percent) + ")"
		if d.Material {
			note += " DIVERGÊNCIA RELEVANTE"
		}
		parts = append(parts, note)
	}
	return strings.Join(parts, " | ")
}
