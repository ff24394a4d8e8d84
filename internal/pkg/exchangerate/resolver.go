// Package exchangerate resolves the current IDR-per-CNY rate for price
// intervals that are written without one.
package exchangerate

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Resolver returns the current rate, or nil when none is known.
type Resolver interface {
	Current(ctx context.Context) (*decimal.Decimal, error)
}

// Static always answers with the same rate.
type Static struct {
	rate *decimal.Decimal
}

// NewStatic returns a resolver for rate; a nil rate resolves to nil.
func NewStatic(rate *decimal.Decimal) *Static {
	return &Static{rate: rate}
}

func (s *Static) Current(context.Context) (*decimal.Decimal, error) {
	if s.rate == nil {
		return nil, nil
	}
	r := *s.rate
	return &r, nil
}

// Chain asks each resolver in turn and returns the first rate found.
// A failing resolver is logged and skipped.
type Chain struct {
	resolvers []Resolver
	logger    *zap.Logger
}

// NewChain builds a Chain. A nil logger is replaced by a no-op logger.
func NewChain(logger *zap.Logger, resolvers ...Resolver) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{resolvers: resolvers, logger: logger}
}

func (c *Chain) Current(ctx context.Context) (*decimal.Decimal, error) {
	for i, r := range c.resolvers {
		rate, err := r.Current(ctx)
		if err != nil {
			c.logger.Warn("exchange rate resolver failed, trying next",
				zap.Int("resolver", i),
				zap.Error(err),
			)
			continue
		}
		if rate != nil {
			return rate, nil
		}
	}
	return nil, nil
}
