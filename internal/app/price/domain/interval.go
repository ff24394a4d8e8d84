package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price sources recorded on an interval.
const (
	SourceManual   = "manual"
	SourceImport   = "import"
	SourceSupplier = "supplier"
)

// PriceInterval is one version of a scope's price, valid over the half-open
// range [EffectiveFrom, EffectiveTo). A nil EffectiveTo is open-ended.
type PriceInterval struct {
	ID            string
	Scope         Scope
	Fields        PriceFields
	ExchangeRate  *decimal.Decimal
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Source        string
	ChangeReason  string
	ChangedBy     string
	CreatedAt     time.Time
}

// EffectiveAt reports whether the interval is in force at t.
// Zero-width intervals are never in force.
func (p *PriceInterval) EffectiveAt(t time.Time) bool {
	if t.Before(p.EffectiveFrom) {
		return false
	}
	return p.EffectiveTo == nil || t.Before(*p.EffectiveTo)
}

// IsFuture reports whether the interval has not started yet at now.
func (p *PriceInterval) IsFuture(now time.Time) bool {
	return p.EffectiveFrom.After(now)
}

// IsOpen reports whether the interval has no end.
func (p *PriceInterval) IsOpen() bool {
	return p.EffectiveTo == nil
}

// IsEmpty reports whether the interval covers no instant.
func (p *PriceInterval) IsEmpty() bool {
	return p.EffectiveTo != nil && !p.EffectiveTo.After(p.EffectiveFrom)
}

// Overlaps reports whether two intervals share at least one instant.
func (p *PriceInterval) Overlaps(other *PriceInterval) bool {
	if p.IsEmpty() || other.IsEmpty() {
		return false
	}
	pEndsFirst := p.EffectiveTo != nil && !p.EffectiveTo.After(other.EffectiveFrom)
	otherEndsFirst := other.EffectiveTo != nil && !other.EffectiveTo.After(p.EffectiveFrom)
	return !pEndsFirst && !otherEndsFirst
}

// Copy returns a deep copy.
func (p *PriceInterval) Copy() *PriceInterval {
	cp := *p
	cp.Fields = p.Fields.Clone()
	if p.ExchangeRate != nil {
		rate := *p.ExchangeRate
		cp.ExchangeRate = &rate
	}
	if p.EffectiveTo != nil {
		to := *p.EffectiveTo
		cp.EffectiveTo = &to
	}
	return &cp
}
