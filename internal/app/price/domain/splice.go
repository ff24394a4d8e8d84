package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SyncRequest is a proposed price change for one scope.
type SyncRequest struct {
	IntervalID    string // id to give the new interval
	Fields        PriceFields
	ExchangeRate  *decimal.Decimal
	EffectiveFrom *time.Time // nil means now
	ChangeReason  string
	ChangedBy     string
	Source        string
}

// Closure moves the end of an existing interval. A nil EffectiveTo reopens it.
type Closure struct {
	IntervalID  string
	EffectiveTo *time.Time
}

// SyncPlan is the set of timeline edits a sync resolves to.
// The edits are only meaningful when applied together in one transaction.
type SyncPlan struct {
	EffectiveFrom time.Time
	Bootstrapped  bool
	Backfill      bool
	NoOp          bool

	// Base is the interval that was in force at EffectiveFrom before the change.
	Base *PriceInterval

	Closures  []Closure
	Deletions []*PriceInterval
	Interval  *PriceInterval
	Changes   []ChangeLogEntry
}

// IsEmpty reports whether the plan writes nothing.
func (p *SyncPlan) IsEmpty() bool {
	return p.Interval == nil && len(p.Closures) == 0 && len(p.Deletions) == 0
}

// Result is the interval the caller should see: the new one, or Base on a no-op.
func (p *SyncPlan) Result() *PriceInterval {
	if p.Interval != nil {
		return p.Interval
	}
	return p.Base
}

// ResolveEffectiveFrom applies the bootstrap rule: the first interval of a
// scope always starts now. Otherwise a missing time means now.
func ResolveEffectiveFrom(t *Timeline, requested *time.Time, now time.Time) (time.Time, bool) {
	if t.IsEmpty() {
		return now, requested != nil && !requested.Equal(now)
	}
	if requested == nil {
		return now, false
	}
	return requested.UTC(), false
}

// PlanSync decides how a price change is spliced into the timeline.
//
// The plan never leaves two intervals overlapping, never leaves two pending
// future intervals, and keeps exactly one interval in force at now.
func PlanSync(t *Timeline, req SyncRequest, now time.Time) (*SyncPlan, error) {
	if len(req.Fields) == 0 {
		return nil, ErrNoPriceFields
	}

	effectiveFrom, bootstrapped := ResolveEffectiveFrom(t, req.EffectiveFrom, now)
	fields := req.Fields.Rounded()
	base := t.EffectiveAt(effectiveFrom)

	plan := &SyncPlan{
		EffectiveFrom: effectiveFrom,
		Bootstrapped:  bootstrapped,
		Base:          base,
	}

	if base != nil && base.Fields.Covers(fields) && sameRate(base.ExchangeRate, req.ExchangeRate) {
		plan.NoOp = true
		return plan, nil
	}

	if effectiveFrom.After(now) && len(t.Futures(now)) > 0 {
		return nil, ErrPendingFuturePrice
	}

	// A later interval that already started means this is a correction of
	// history: it slots in before that interval and leaves the present alone.
	backfill := false
	for _, iv := range t.intervals {
		if iv.EffectiveFrom.After(effectiveFrom) && !iv.EffectiveFrom.After(now) {
			backfill = true
			break
		}
	}
	plan.Backfill = backfill

	deleted := make(map[string]bool)
	if !backfill && !effectiveFrom.After(now) {
		for _, f := range t.Futures(now) {
			plan.Deletions = append(plan.Deletions, f)
			deleted[f.ID] = true
		}
	}

	if base != nil && !deleted[base.ID] {
		to := effectiveFrom
		plan.Closures = append(plan.Closures, Closure{IntervalID: base.ID, EffectiveTo: &to})
	}

	var effectiveTo *time.Time
	if next := t.nextStartAfter(effectiveFrom, deleted); next != nil {
		to := next.EffectiveFrom
		effectiveTo = &to
	}

	merged := fields
	rate := copyDecimal(req.ExchangeRate)
	if base != nil {
		merged = base.Fields.Overlay(fields)
		if rate == nil {
			rate = copyDecimal(base.ExchangeRate)
		}
	}

	source := req.Source
	if source == "" {
		source = SourceManual
	}

	plan.Interval = &PriceInterval{
		ID:            req.IntervalID,
		Scope:         t.scope,
		Fields:        merged,
		ExchangeRate:  rate,
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
		Source:        source,
		ChangeReason:  req.ChangeReason,
		ChangedBy:     req.ChangedBy,
		CreatedAt:     now,
	}
	plan.Changes = BuildChangeLog(base, plan.Interval, now)
	return plan, nil
}

// PlanCancelFuture drops the pending future interval(s) and reopens the
// interval that was handing over to them.
func PlanCancelFuture(t *Timeline, now time.Time) (*SyncPlan, error) {
	futures := t.Futures(now)
	if len(futures) == 0 {
		return nil, ErrNoPendingFuturePrice
	}

	plan := &SyncPlan{EffectiveFrom: futures[0].EffectiveFrom}
	deleted := make(map[string]bool, len(futures))
	for _, f := range futures {
		plan.Deletions = append(plan.Deletions, f)
		deleted[f.ID] = true
	}

	if current := t.Current(now); current != nil {
		plan.Base = current
		var to *time.Time
		if next := t.nextStartAfter(current.EffectiveFrom, deleted); next != nil {
			v := next.EffectiveFrom
			to = &v
		}
		plan.Closures = append(plan.Closures, Closure{IntervalID: current.ID, EffectiveTo: to})
	}
	return plan, nil
}

func sameRate(current, requested *decimal.Decimal) bool {
	if requested == nil {
		return true
	}
	return current != nil && current.Equal(*requested)
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
