package domain

import (
	"fmt"
	"sort"
	"time"
)

// Timeline is the full ordered set of intervals of one scope.
type Timeline struct {
	scope     Scope
	intervals []*PriceInterval
}

// NewTimeline orders intervals by EffectiveFrom, then CreatedAt.
// Intervals are copied; the timeline never aliases caller data.
func NewTimeline(scope Scope, intervals []*PriceInterval) *Timeline {
	sorted := make([]*PriceInterval, 0, len(intervals))
	for _, iv := range intervals {
		sorted = append(sorted, iv.Copy())
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].EffectiveFrom.Equal(sorted[j].EffectiveFrom) {
			return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return &Timeline{scope: scope, intervals: sorted}
}

func (t *Timeline) Scope() Scope  { return t.scope }
func (t *Timeline) Len() int      { return len(t.intervals) }
func (t *Timeline) IsEmpty() bool { return len(t.intervals) == 0 }

// Intervals returns the intervals in ascending order.
func (t *Timeline) Intervals() []*PriceInterval {
	out := make([]*PriceInterval, len(t.intervals))
	copy(out, t.intervals)
	return out
}

// EffectiveAt returns the interval in force at at, or nil.
// If a corrupt timeline has several, the latest-starting one wins.
func (t *Timeline) EffectiveAt(at time.Time) *PriceInterval {
	var found *PriceInterval
	for _, iv := range t.intervals {
		if iv.EffectiveAt(at) {
			found = iv
		}
	}
	return found
}

// Current returns the interval in force at now.
func (t *Timeline) Current(now time.Time) *PriceInterval {
	return t.EffectiveAt(now)
}

// Futures returns the intervals that start after now, ascending.
func (t *Timeline) Futures(now time.Time) []*PriceInterval {
	var out []*PriceInterval
	for _, iv := range t.intervals {
		if iv.IsFuture(now) {
			out = append(out, iv)
		}
	}
	return out
}

// CreatedSince counts intervals written at or after since.
func (t *Timeline) CreatedSince(since time.Time) int {
	n := 0
	for _, iv := range t.intervals {
		if !iv.CreatedAt.Before(since) {
			n++
		}
	}
	return n
}

// Find returns the interval with the given id, or nil.
func (t *Timeline) Find(id string) *PriceInterval {
	for _, iv := range t.intervals {
		if iv.ID == id {
			return iv
		}
	}
	return nil
}

// nextStartAfter returns the earliest interval starting strictly after at,
// skipping ids in excluded.
func (t *Timeline) nextStartAfter(at time.Time, excluded map[string]bool) *PriceInterval {
	for _, iv := range t.intervals {
		if excluded[iv.ID] {
			continue
		}
		if iv.EffectiveFrom.After(at) {
			return iv
		}
	}
	return nil
}

// Apply returns the timeline that results from committing plan.
func (t *Timeline) Apply(plan *SyncPlan) *Timeline {
	if plan == nil || plan.IsEmpty() {
		return NewTimeline(t.scope, t.intervals)
	}
	deleted := make(map[string]bool, len(plan.Deletions))
	for _, iv := range plan.Deletions {
		deleted[iv.ID] = true
	}
	ends := make(map[string]*time.Time, len(plan.Closures))
	for _, c := range plan.Closures {
		ends[c.IntervalID] = c.EffectiveTo
	}

	next := make([]*PriceInterval, 0, len(t.intervals)+1)
	for _, iv := range t.intervals {
		if deleted[iv.ID] {
			continue
		}
		cp := iv.Copy()
		if to, ok := ends[iv.ID]; ok {
			cp.EffectiveTo = copyTime(to)
		}
		next = append(next, cp)
	}
	if plan.Interval != nil {
		next = append(next, plan.Interval)
	}
	return NewTimeline(t.scope, next)
}

// CheckInvariants verifies non-overlap, at most one pending future and
// exactly one current interval at now.
func (t *Timeline) CheckInvariants(now time.Time) error {
	for i, a := range t.intervals {
		if a.EffectiveTo != nil && a.EffectiveTo.Before(a.EffectiveFrom) {
			return fmt.Errorf("%w: interval %s ends before it starts", ErrTimelineInvariant, a.ID)
		}
		for _, b := range t.intervals[i+1:] {
			if a.Overlaps(b) {
				return fmt.Errorf("%w: intervals %s and %s overlap", ErrTimelineInvariant, a.ID, b.ID)
			}
		}
	}
	if n := len(t.Futures(now)); n > 1 {
		return fmt.Errorf("%w: %d pending future intervals", ErrTimelineInvariant, n)
	}
	if t.IsEmpty() {
		return nil
	}
	current := 0
	for _, iv := range t.intervals {
		if iv.EffectiveAt(now) {
			current++
		}
	}
	if current != 1 {
		return fmt.Errorf("%w: %d intervals effective at %s", ErrTimelineInvariant, current, now.Format(time.RFC3339))
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
