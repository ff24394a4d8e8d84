package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChangeType tells whether a field got its first value or a new one.
type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
)

var hundred = decimal.NewFromInt(100)

// FieldChange is the delta of one (price type, currency) pair.
type FieldChange struct {
	Field      FieldKey
	ChangeType ChangeType
	OldPrice   *decimal.Decimal
	NewPrice   decimal.Decimal
	Delta      decimal.Decimal
	DeltaPct   *decimal.Decimal
}

// ChangeLogEntry is one immutable audit row.
type ChangeLogEntry struct {
	ID           string
	Scope        Scope
	PriceID      string
	ChangeType   ChangeType
	PriceType    PriceType
	Currency     Currency
	OldPrice     *decimal.Decimal
	NewPrice     decimal.Decimal
	Delta        decimal.Decimal
	DeltaPct     *decimal.Decimal
	ChangeReason string
	ChangedBy    string
	ChangedAt    time.Time
}

// DiffFields compares old and next amounts pair by pair in storage order.
// Pairs that are unchanged, or absent in next, produce nothing.
// An absent old amount counts as zero for the delta; the percentage is only
// computed when the old amount is positive.
func DiffFields(old, next PriceFields) []FieldChange {
	var changes []FieldChange
	for _, k := range AllFields {
		newPrice, ok := next.Get(k)
		if !ok {
			continue
		}
		oldPrice, hadOld := old.Get(k)
		if hadOld && oldPrice.Equal(newPrice) {
			continue
		}

		change := FieldChange{Field: k, NewPrice: newPrice}
		if !hadOld {
			change.ChangeType = ChangeTypeCreate
			change.Delta = newPrice
		} else {
			change.ChangeType = ChangeTypeUpdate
			op := oldPrice
			change.OldPrice = &op
			change.Delta = newPrice.Sub(oldPrice)
			if oldPrice.IsPositive() {
				pct := change.Delta.Div(oldPrice).Mul(hundred).Round(AmountScale)
				change.DeltaPct = &pct
			}
		}
		changes = append(changes, change)
	}
	return changes
}

// BuildChangeLog turns the diff between base and the new interval into audit
// rows attributed to the new interval. base may be nil.
func BuildChangeLog(base, next *PriceInterval, changedAt time.Time) []ChangeLogEntry {
	var old PriceFields
	if base != nil {
		old = base.Fields
	}
	changes := DiffFields(old, next.Fields)
	entries := make([]ChangeLogEntry, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, ChangeLogEntry{
			Scope:        next.Scope,
			PriceID:      next.ID,
			ChangeType:   c.ChangeType,
			PriceType:    c.Field.Type,
			Currency:     c.Field.Currency,
			OldPrice:     c.OldPrice,
			NewPrice:     c.NewPrice,
			Delta:        c.Delta,
			DeltaPct:     c.DeltaPct,
			ChangeReason: next.ChangeReason,
			ChangedBy:    next.ChangedBy,
			ChangedAt:    changedAt,
		})
	}
	return entries
}
