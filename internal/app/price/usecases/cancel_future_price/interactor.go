package cancel_future_price

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/spanner"
	"go.uber.org/zap"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
	"github.com/light-bringer/pricing-service/internal/pkg/committer"
	"github.com/light-bringer/pricing-service/internal/pkg/logger"
)

// Request identifies the scope whose pending future price is withdrawn.
type Request struct {
	ProductID       string
	OrganizationID  *string
	CancelledBy     string
	Reason          string
	ExpectedVersion *int64
}

// Result describes the cancellation.
type Result struct {
	Cancelled []string
	// Current is the interval in force after the cancellation, nil when the
	// scope only had a future price.
	Current     *domain.PriceInterval
	Version     int64
	CommittedAt time.Time
}

// Interactor handles the cancel future price use case.
type Interactor struct {
	intervals  contracts.PriceIntervalRepository
	scopes     contracts.ScopeLockRepository
	outboxRepo contracts.OutboxRepository
	committer  contracts.TxRunner
	clock      clock.Clock
	logger     *zap.Logger
}

// NewInteractor creates a new cancel future price interactor.
func NewInteractor(
	intervals contracts.PriceIntervalRepository,
	scopes contracts.ScopeLockRepository,
	outboxRepo contracts.OutboxRepository,
	committer contracts.TxRunner,
	clock clock.Clock,
	logger *zap.Logger,
) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{
		intervals:  intervals,
		scopes:     scopes,
		outboxRepo: outboxRepo,
		committer:  committer,
		clock:      clock,
		logger:     logger,
	}
}

// Execute deletes the pending future interval of a scope and reopens the
// interval that was handing over to it.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrInvalidRequest)
	}
	scope, err := domain.NewScope(req.ProductID, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CancelledBy) == "" {
		return nil, fmt.Errorf("%w: cancelled_by is required", domain.ErrInvalidRequest)
	}
	log := logger.ForRequest(ctx, i.logger).With(
		zap.String("product_id", scope.ProductID()),
		zap.String("scope", scope.Key()),
	)

	var result *Result
	commitTS, err := i.committer.RunReadWrite(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*committer.CommitPlan, error) {
		result = nil
		now := i.clock.Now()

		version, err := i.scopes.Version(ctx, txn, scope)
		if err != nil {
			return nil, err
		}
		if req.ExpectedVersion != nil && *req.ExpectedVersion != version {
			return nil, fmt.Errorf("%w: expected version %d, found %d",
				domain.ErrConcurrentModification, *req.ExpectedVersion, version)
		}

		timeline, err := i.intervals.LoadTimeline(ctx, txn, scope, true)
		if err != nil {
			return nil, err
		}
		plan, err := domain.PlanCancelFuture(timeline, now)
		if err != nil {
			return nil, err
		}

		cp := committer.NewPlan()
		res := &Result{Version: version + 1}
		for _, d := range plan.Deletions {
			cp.Add(i.intervals.DeleteMut(scope, d.ID))
			res.Cancelled = append(res.Cancelled, d.ID)
		}
		for _, c := range plan.Closures {
			cp.Add(i.intervals.SetEffectiveToMut(scope, c.IntervalID, c.EffectiveTo))
		}
		cp.Add(i.scopes.BumpMut(scope, version))

		event := &domain.PriceFutureCancelledEvent{
			ProductID:      scope.ProductID(),
			OrganizationID: scope.OrganizationIDPtr(),
			CancelledIDs:   res.Cancelled,
			CancelledBy:    req.CancelledBy,
			Reason:         req.Reason,
			CancelledAt:    now,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize event: %w", err)
		}
		cp.Add(i.outboxRepo.InsertMut(i.outboxRepo.EnrichEvent(event, string(payload))))

		if after := timeline.Apply(plan); after != nil {
			res.Current = after.Current(now)
		}
		result = res
		return cp, nil
	})
	if err != nil {
		log.Info("future price cancellation failed", zap.Error(err))
		return nil, err
	}

	result.CommittedAt = commitTS
	log.Info("future price cancelled",
		zap.Strings("cancelled", result.Cancelled),
		zap.String("cancelled_by", req.CancelledBy),
		zap.Int64("version", result.Version),
	)
	return result, nil
}
