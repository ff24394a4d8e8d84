package contracts

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

// PriceIntervalRepository defines persistence of price timelines.
// Repositories return mutations, they don't apply them (Golden Mutation Pattern).
type PriceIntervalRepository interface {
	// LoadTimeline reads every interval of scope. With forUpdate the rows are
	// locked until the read-write transaction behind r ends.
	LoadTimeline(ctx context.Context, r Reader, scope domain.Scope, forUpdate bool) (*domain.Timeline, error)

	// EffectiveAt returns the interval in force at at, or domain.ErrPriceNotFound.
	EffectiveAt(ctx context.Context, r Reader, scope domain.Scope, at time.Time) (*domain.PriceInterval, error)

	// InsertMut creates a mutation for inserting a new interval.
	InsertMut(interval *domain.PriceInterval) (*spanner.Mutation, error)

	// SetEffectiveToMut moves the end of an interval; nil reopens it.
	SetEffectiveToMut(scope domain.Scope, priceID string, effectiveTo *time.Time) *spanner.Mutation

	// DeleteMut creates a mutation removing an interval.
	DeleteMut(scope domain.Scope, priceID string) *spanner.Mutation
}
