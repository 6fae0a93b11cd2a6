package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/hortifruti/backend/internal/domain/pricing"
)

// PDFContentType is the media type of generated closing protocols
const PDFContentType = "application/pdf"

// ClosingPDF renders the closing protocol of a purchase order on an A4
// landscape page: header, one row per item and the order totals.
func ClosingPDF(h ClosingHeader, sheet *pricing.Sheet) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Protocolo de Recebimento"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Pedido %s - %s", h.OrderNumber, h.SupplierName)), "", 1, "C", false, 0, "")
	if !h.ClosedAt.IsZero() {
		pdf.CellFormat(contentW, 5, h.ClosedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	cols := []struct {
		title string
		width float64
		align string
	}{
		{"Produto", 0.22, "L"},
		{"Volumes", 0.08, "R"},
		{"Peso bruto", 0.10, "R"},
		{"Peso líquido", 0.10, "R"},
		{"Valor itens", 0.12, "R"},
		{"Custo real/kg", 0.12, "R"},
		{"Margem", 0.10, "R"},
		{"Preço venda", 0.16, "R"},
	}

	pdf.SetFont("Helvetica", "B", 9)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(contentW*c.width, 6, tr(c.title), "B", ln, c.align, false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, l := range sheet.Lines() {
		values := []string{
			l.ProductName,
			l.Volumes.String(),
			pricing.FormatWeight(l.GrossWeight),
			pricing.FormatWeight(l.NetWeight),
			pricing.FormatMoney(l.GoodsTotal),
			pricing.FormatMoney(l.RealCostPerKg),
			pricing.FormatPercent(l.Margin),
			pricing.FormatMoney(l.SalePrice),
		}
		for i, c := range cols {
			ln := 0
			if i == len(cols)-1 {
				ln = 1
			}
			pdf.CellFormat(contentW*c.width, 5, tr(values[i]), "", ln, c.align, false, 0, "")
		}
	}

	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	t := sheet.Totals()
	rows := [][2]string{
		{"Peso bruto total", pricing.FormatWeight(t.GrossWeight)},
		{"Peso líquido total", pricing.FormatWeight(t.NetWeight)},
		{"Valor das mercadorias", pricing.FormatMoney(t.GoodsTotal)},
		{"Frete", pricing.FormatMoney(t.Freight)},
		{"Outros custos", pricing.FormatMoney(t.OtherCosts)},
		{"Margem média ponderada", pricing.FormatPercent(t.WeightedMargin)},
	}
	if d := t.Discrepancy; d != nil {
		rows = append(rows, [2]string{"Peso balança", fmt.Sprintf("%s (divergência %s)", pricing.FormatWeight(d.ScaleWeight), pricing.FormatPercent(d.Percent))})
	}

	labelW := contentW * 0.75
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		pdf.CellFormat(labelW, 5, tr(r[0]+":"), "", 0, "R", false, 0, "")
		pdf.CellFormat(contentW-labelW, 5, tr(r[1]), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 7, "TOTAL RECEBIDO:", "", 0, "R", false, 0, "")
	pdf.CellFormat(contentW-labelW, 7, tr(pricing.FormatMoney(t.TotalReceived)), "", 1, "R", false, 0, "")

	if d := t.Discrepancy; d != nil && d.Material {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(contentW, 6, tr("ATENÇÃO: divergência relevante entre nota e balança"), "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render closing protocol: %w", err)
	}
	return buf.Bytes(), nil
}
