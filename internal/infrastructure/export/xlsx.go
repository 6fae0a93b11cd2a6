package export

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/breakage"
	"github.com/xuri/excelize/v2"
)

const (
	breakageSheet = "Quebras"
	summarySheet  = "Resumo"

	// XLSXContentType is the media type of generated workbooks
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// BreakageWorkbook builds a workbook with one row per breakage and a
// per-reason summary sheet. names maps product IDs to display names;
// missing entries fall back to the ID.
func BreakageWorkbook(items []breakage.Breakage, names map[uuid.UUID]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", breakageSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []interface{}{"Data", "Produto", "Quantidade", "Custo unitário", "Prejuízo", "Motivo", "Observações", "Lote"}
	if err := f.SetSheetRow(breakageSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}

	for i, b := range items {
		name, ok := names[b.ProductID]
		if !ok {
			name = b.ProductID.String()
		}
		batch := ""
		if b.BatchID != nil {
			batch = b.BatchID.String()
		}
		row := []interface{}{
			b.CreatedAt.Format("02/01/2006 15:04"),
			name,
			b.Quantity.InexactFloat64(),
			b.CostPerUnit.InexactFloat64(),
			b.TotalLoss.Round(2).InexactFloat64(),
			ReasonLabel(b.Reason),
			b.Notes,
			batch,
		}
		if err := f.SetSheetRow(breakageSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	summaryHeaders := []interface{}{"Motivo", "Registros", "Quantidade", "Prejuízo"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeaders); err != nil {
		return nil, fmt.Errorf("write summary headers: %w", err)
	}

	summary := breakage.Summarize(items)
	var count int
	var qty, loss float64
	for i, s := range summary {
		row := []interface{}{ReasonLabel(s.Reason), s.Count, s.Quantity.InexactFloat64(), s.TotalLoss.Round(2).InexactFloat64()}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
		count += s.Count
		qty += s.Quantity.InexactFloat64()
		loss += s.TotalLoss.Round(2).InexactFloat64()
	}
	total := []interface{}{"Total", count, qty, loss}
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", len(summary)+2), &total); err != nil {
		return nil, fmt.Errorf("write summary total: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
