package validate_price

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
	"github.com/light-bringer/pricing-service/internal/pkg/logger"
)

// Request contains a proposed price change to check without writing it.
type Request struct {
	ProductID      string
	OrganizationID *string
	Fields         domain.PriceFields
	ExchangeRate   *decimal.Decimal
	EffectiveFrom  *time.Time
	ChangeReason   string
}

// Result is the validation verdict.
type Result struct {
	IsValid       bool
	Errors        []string
	Warnings      []string
	EffectiveFrom time.Time
	Bootstrapped  bool
	Version       int64
}

// Interactor handles the validate price use case. It runs the same rules as
// a sync against a consistent snapshot and never writes.
type Interactor struct {
	intervals contracts.PriceIntervalRepository
	scopes    contracts.ScopeLockRepository
	products  contracts.ProductLookup
	committer contracts.TxRunner
	clock     clock.Clock
	logger    *zap.Logger
}

// NewInteractor creates a new validate price interactor.
func NewInteractor(
	intervals contracts.PriceIntervalRepository,
	scopes contracts.ScopeLockRepository,
	products contracts.ProductLookup,
	committer contracts.TxRunner,
	clock clock.Clock,
	logger *zap.Logger,
) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{
		intervals: intervals,
		scopes:    scopes,
		products:  products,
		committer: committer,
		clock:     clock,
		logger:    logger,
	}
}

// Execute validates a proposed change.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrInvalidRequest)
	}
	scope, err := domain.NewScope(req.ProductID, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	if len(req.Fields) == 0 {
		return nil, domain.ErrNoPriceFields
	}

	var result *Result
	err = i.committer.RunReadOnly(ctx, func(ctx context.Context, txn *spanner.ReadOnlyTransaction) error {
		now := i.clock.Now()

		version, err := i.scopes.Version(ctx, txn, scope)
		if err != nil {
			return err
		}
		product, err := i.products.GetProduct(ctx, txn, scope.ProductID())
		if err != nil {
			return err
		}
		timeline, err := i.intervals.LoadTimeline(ctx, txn, scope, false)
		if err != nil {
			return err
		}

		effectiveFrom, bootstrapped := domain.ResolveEffectiveFrom(timeline, req.EffectiveFrom, now)
		validation := domain.Validate(domain.ValidationInput{
			Product:       product,
			Timeline:      timeline,
			Fields:        req.Fields,
			ExchangeRate:  req.ExchangeRate,
			EffectiveFrom: effectiveFrom,
			Bootstrapped:  bootstrapped,
			ChangeReason:  req.ChangeReason,
			Now:           now,
		})
		result = &Result{
			IsValid:       validation.IsValid(),
			Errors:        nonNil(validation.Errors),
			Warnings:      nonNil(validation.Warnings),
			EffectiveFrom: effectiveFrom,
			Bootstrapped:  bootstrapped,
			Version:       version,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to validate price: %w", err)
	}

	logger.ForRequest(ctx, i.logger).Debug("price validated",
		zap.String("product_id", scope.ProductID()),
		zap.String("scope", scope.Key()),
		zap.Bool("valid", result.IsValid),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
