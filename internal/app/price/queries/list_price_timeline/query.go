package list_price_timeline

import (
	"context"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
)

// Request identifies the scope to list.
type Request struct {
	ProductID      string
	OrganizationID *string
}

// Result is the whole timeline of a scope in ascending order.
type Result struct {
	Scope     domain.Scope
	Intervals []*domain.PriceInterval
	Current   *domain.PriceInterval
	Pending   *domain.PriceInterval
}

// Query handles the list price timeline query use case.
type Query struct {
	readModel contracts.ReadModel
	clock     clock.Clock
}

// NewQuery creates a new list price timeline query.
func NewQuery(readModel contracts.ReadModel, clock clock.Clock) *Query {
	return &Query{
		readModel: readModel,
		clock:     clock,
	}
}

// Execute lists every interval of the scope. An unknown scope yields an empty
// timeline, not an error.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	scope, err := domain.NewScope(req.ProductID, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	timeline, err := q.readModel.Timeline(ctx, scope)
	if err != nil {
		return nil, err
	}

	now := q.clock.Now()
	result := &Result{
		Scope:     scope,
		Intervals: timeline.Intervals(),
		Current:   timeline.Current(now),
	}
	if futures := timeline.Futures(now); len(futures) > 0 {
		result.Pending = futures[0]
	}
	return result, nil
}
