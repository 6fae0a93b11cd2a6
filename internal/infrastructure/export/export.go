// Package export renders breakage reports and purchase order closing
// protocols into the formats the store shares with staff and suppliers.
package export

import (
	"time"

	"github.com/hortifruti/backend/internal/domain/breakage"
)

// ClosingHeader identifies the order a closing protocol belongs to
type ClosingHeader struct {
	OrderNumber  string
	SupplierName string
	ClosedAt     time.Time
}

var reasonLabels = map[breakage.Reason]string{
	breakage.ReasonExpired:          "Vencido",
	breakage.ReasonDamaged:          "Avariado",
	breakage.ReasonTheft:            "Furto",
	breakage.ReasonOperationalError: "Erro operacional",
	breakage.ReasonOther:            "Outro",
}

// ReasonLabel returns the Portuguese label shown for a breakage reason
func ReasonLabel(r breakage.Reason) string {
	if l, ok := reasonLabels[r]; ok {
		return l
	}
	return string(r)
}
