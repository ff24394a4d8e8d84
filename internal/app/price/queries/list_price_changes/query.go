package list_price_changes

import (
	"context"
	"fmt"
	"strings"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Request contains the product and page size.
type Request struct {
	ProductID string
	Limit     int // default 50, max 500
}

// Query handles the list price changes query use case.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new list price changes query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute returns the change-log rows of every scope of a product, newest first.
func (q *Query) Execute(ctx context.Context, req *Request) ([]domain.ChangeLogEntry, error) {
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidScope)
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	return q.readModel.ChangeLog(ctx, strings.TrimSpace(req.ProductID), req.Limit)
}
