package breakage

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Reason classifies a breakage
type Reason string

const (
	ReasonExpired          Reason = "expired"
	ReasonDamaged          Reason = "damaged"
	ReasonTheft            Reason = "theft"
	ReasonOperationalError Reason = "operational_error"
	ReasonOther            Reason = "other"
)

// reasonAliases maps the labels used on the store floor to reasons
var reasonAliases = map[string]Reason{
	"vencido":          ReasonExpired,
	"avariado":         ReasonDamaged,
	"avaria":           ReasonDamaged,
	"furto":            ReasonTheft,
	"roubo":            ReasonTheft,
	"erro_operacional": ReasonOperationalError,
	"outro":            ReasonOther,
	"outros":           ReasonOther,
}

// IsValid checks if the reason is known
func (r Reason) IsValid() bool {
	switch r {
	case ReasonExpired, ReasonDamaged, ReasonTheft, ReasonOperationalError, ReasonOther:
		return true
	}
	return false
}

// ParseReason accepts canonical reasons and their Portuguese aliases
func ParseReason(s string) (Reason, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if r := Reason(key); r.IsValid() {
		return r, nil
	}
	if r, ok := reasonAliases[key]; ok {
		return r, nil
	}
	return "", shared.NewDomainError("INVALID_REASON", "Unknown breakage reason: "+s)
}

// Breakage is a recorded stock loss.
// CostPerUnit is copied from the batch at write time and never follows later
// cost changes.
type Breakage struct {
	shared.BaseEntity
	ProductID   uuid.UUID
	BatchID     *uuid.UUID
	Quantity    decimal.Decimal
	CostPerUnit decimal.Decimal
	TotalLoss   decimal.Decimal
	Reason      Reason
	Notes       string
	PhotoKey    string
}

// NewBreakage creates a breakage with total_loss = quantity × cost_per_unit
func NewBreakage(
	productID uuid.UUID,
	batchID *uuid.UUID,
	quantity decimal.Decimal,
	costPerUnit decimal.Decimal,
	reason Reason,
	notes string,
) (*Breakage, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Breakage quantity must be positive")
	}
	if costPerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost per unit cannot be negative")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Unknown breakage reason: "+string(reason))
	}
	if len(notes) > 1000 {
		return nil, shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 1000 characters")
	}

	return &Breakage{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		BatchID:     batchID,
		Quantity:    quantity,
		CostPerUnit: costPerUnit,
		TotalLoss:   quantity.Mul(costPerUnit),
		Reason:      reason,
		Notes:       strings.TrimSpace(notes),
	}, nil
}

// AttachPhoto records the object storage key of the breakage photo
func (b *Breakage) AttachPhoto(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_PHOTO", "Photo key cannot be empty")
	}
	b.PhotoKey = key
	b.Touch()
	return nil
}

// HasBatch reports whether a batch absorbed the loss
func (b *Breakage) HasBatch() bool {
	return b.BatchID != nil
}

// Filter narrows breakage listings
type Filter struct {
	shared.Filter
	ProductID *uuid.UUID
	Reason    *Reason
	From      *time.Time
	To        *time.Time
}

// Summary aggregates losses per reason
type Summary struct {
	Reason    Reason
	Count     int
	Quantity  decimal.Decimal
	TotalLoss decimal.Decimal
}

// Summarize groups breakages by reason, in the order reasons first appear
func Summarize(items []Breakage) []Summary {
	index := make(map[Reason]int)
	out := make([]Summary, 0)
	for _, b := range items {
		i, ok := index[b.Reason]
		if !ok {
			i = len(out)
			index[b.Reason] = i
			out = append(out, Summary{Reason: b.Reason, Quantity: decimal.Zero, TotalLoss: decimal.Zero})
		}
		out[i].Count++
		out[i].Quantity = out[i].Quantity.Add(b.Quantity)
		out[i].TotalLoss = out[i].TotalLoss.Add(b.TotalLoss)
	}
	return out
}
