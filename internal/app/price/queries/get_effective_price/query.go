package get_effective_price

import (
	"context"
	"time"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
)

// Request identifies a scope and a point in time.
type Request struct {
	ProductID      string
	OrganizationID *string
	At             *time.Time // nil means now
}

// Result is the interval in force at the requested time.
type Result struct {
	Interval *domain.PriceInterval
	At       time.Time
}

// Query handles the get effective price query use case.
type Query struct {
	readModel contracts.ReadModel
	clock     clock.Clock
}

// NewQuery creates a new get effective price query.
func NewQuery(readModel contracts.ReadModel, clock clock.Clock) *Query {
	return &Query{
		readModel: readModel,
		clock:     clock,
	}
}

// Execute returns the price in force for the scope at req.At, or
// domain.ErrPriceNotFound. Organization scopes do not inherit the generic price.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	scope, err := domain.NewScope(req.ProductID, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	at := q.clock.Now()
	if req.At != nil {
		at = req.At.UTC()
	}

	interval, err := q.readModel.EffectivePrice(ctx, scope, at)
	if err != nil {
		return nil, err
	}
	return &Result{Interval: interval, At: at}, nil
}
