package repo

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

// ReadModelImpl implements ReadModel on single-use read-only snapshots.
type ReadModelImpl struct {
	client    *spanner.Client
	intervals contracts.PriceIntervalRepository
	changes   contracts.ChangeLogRepository
}

// NewReadModel creates a new ReadModel implementation.
func NewReadModel(client *spanner.Client, intervals contracts.PriceIntervalRepository, changes contracts.ChangeLogRepository) contracts.ReadModel {
	return &ReadModelImpl{
		client:    client,
		intervals: intervals,
		changes:   changes,
	}
}

// EffectivePrice returns the interval in force at at.
func (rm *ReadModelImpl) EffectivePrice(ctx context.Context, scope domain.Scope, at time.Time) (*domain.PriceInterval, error) {
	return rm.intervals.EffectiveAt(ctx, rm.client.Single(), scope, at)
}

// Timeline returns every interval of scope in ascending order.
func (rm *ReadModelImpl) Timeline(ctx context.Context, scope domain.Scope) (*domain.Timeline, error) {
	return rm.intervals.LoadTimeline(ctx, rm.client.Single(), scope, false)
}

// ChangeLog returns the newest change rows of a product.
func (rm *ReadModelImpl) ChangeLog(ctx context.Context, productID string, limit int) ([]domain.ChangeLogEntry, error) {
	return rm.changes.ListByProduct(ctx, rm.client.Single(), productID, limit)
}
