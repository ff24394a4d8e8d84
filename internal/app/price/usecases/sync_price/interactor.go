package sync_price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
	"github.com/light-bringer/pricing-service/internal/pkg/committer"
	"github.com/light-bringer/pricing-service/internal/pkg/exchangerate"
	"github.com/light-bringer/pricing-service/internal/pkg/logger"
)

// Request contains a proposed price change for one scope.
type Request struct {
	ProductID      string
	OrganizationID *string // nil for the generic price
	Fields         domain.PriceFields
	ExchangeRate   *decimal.Decimal
	EffectiveFrom  *time.Time // nil means now
	ChangeReason   string
	ChangedBy      string
	Source         string

	// ExpectedVersion makes the write conditional on the scope version the
	// caller last read.
	ExpectedVersion *int64
}

// Result describes what the sync did.
type Result struct {
	// Interval is the new interval, or the unchanged one in force on a no-op.
	Interval      *domain.PriceInterval
	NoOp          bool
	Backfill      bool
	Bootstrapped  bool
	EffectiveFrom time.Time
	Superseded    []string
	Changes       []domain.ChangeLogEntry
	Warnings      []string
	Version       int64
	CommittedAt   time.Time
}

// Interactor handles the sync price use case.
type Interactor struct {
	intervals  contracts.PriceIntervalRepository
	changes    contracts.ChangeLogRepository
	scopes     contracts.ScopeLockRepository
	products   contracts.ProductLookup
	outboxRepo contracts.OutboxRepository
	committer  contracts.TxRunner
	rates      exchangerate.Resolver
	clock      clock.Clock
	logger     *zap.Logger
	newID      func() string
}

// NewInteractor creates a new sync price interactor.
func NewInteractor(
	intervals contracts.PriceIntervalRepository,
	changes contracts.ChangeLogRepository,
	scopes contracts.ScopeLockRepository,
	products contracts.ProductLookup,
	outboxRepo contracts.OutboxRepository,
	committer contracts.TxRunner,
	rates exchangerate.Resolver,
	clock clock.Clock,
	logger *zap.Logger,
) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{
		intervals:  intervals,
		changes:    changes,
		scopes:     scopes,
		products:   products,
		outboxRepo: outboxRepo,
		committer:  committer,
		rates:      rates,
		clock:      clock,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Execute validates the change, splices it into the scope's timeline and
// commits intervals, audit rows, the scope version and the outbox event in
// one read-write transaction.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Result, error) {
	// 1. Validate request
	scope, err := i.validate(req)
	if err != nil {
		return nil, err
	}
	log := logger.ForRequest(ctx, i.logger).With(
		zap.String("product_id", scope.ProductID()),
		zap.String("scope", scope.Key()),
	)

	// 2. Resolve the fallback rate outside the transaction, it may hit the network
	fallbackRate := i.fallbackRate(ctx, req, log)

	var result *Result
	commitTS, err := i.committer.RunReadWrite(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*committer.CommitPlan, error) {
		// Spanner may run this more than once; nothing here may leak between attempts.
		result = nil
		now := i.clock.Now()

		// 3. Read and check the scope version, every writer rewrites this row
		version, err := i.scopes.Version(ctx, txn, scope)
		if err != nil {
			return nil, err
		}
		if req.ExpectedVersion != nil && *req.ExpectedVersion != version {
			return nil, fmt.Errorf("%w: expected version %d, found %d",
				domain.ErrConcurrentModification, *req.ExpectedVersion, version)
		}

		// 4. Load product and the locked timeline
		product, err := i.products.GetProduct(ctx, txn, scope.ProductID())
		if err != nil {
			return nil, err
		}
		timeline, err := i.intervals.LoadTimeline(ctx, txn, scope, true)
		if err != nil {
			return nil, err
		}

		// 5. Business rules
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
		if err := validation.Err(); err != nil {
			return nil, err
		}

		// 6. Splice
		plan, err := domain.PlanSync(timeline, domain.SyncRequest{
			IntervalID:    i.newID(),
			Fields:        req.Fields,
			ExchangeRate:  req.ExchangeRate,
			EffectiveFrom: req.EffectiveFrom,
			ChangeReason:  req.ChangeReason,
			ChangedBy:     req.ChangedBy,
			Source:        req.Source,
		}, now)
		if err != nil {
			return nil, err
		}

		res := &Result{
			Interval:      plan.Result(),
			NoOp:          plan.NoOp,
			Backfill:      plan.Backfill,
			Bootstrapped:  plan.Bootstrapped,
			EffectiveFrom: plan.EffectiveFrom,
			Warnings:      validation.Warnings,
			Version:       version,
		}
		if plan.NoOp {
			result = res
			return nil, nil
		}

		if plan.Interval.ExchangeRate == nil && fallbackRate != nil {
			rate := *fallbackRate
			plan.Interval.ExchangeRate = &rate
		}

		// 7. The committed timeline must keep its invariants
		if err := i.checkInvariants(timeline, plan, now, log); err != nil {
			return nil, err
		}

		// 8. Collect mutations
		cp, err := i.buildPlan(scope, version, plan)
		if err != nil {
			return nil, err
		}

		for _, d := range plan.Deletions {
			res.Superseded = append(res.Superseded, d.ID)
		}
		res.Changes = plan.Changes
		res.Version = version + 1
		result = res
		return cp, nil
	})
	if err != nil {
		return nil, i.logFailure(log, err)
	}

	if result.NoOp {
		log.Info("price sync is a no-op", zap.String("price_id", idOf(result.Interval)))
	} else {
		result.CommittedAt = commitTS
		log.Info("price synced",
			zap.String("price_id", result.Interval.ID),
			zap.Time("effective_from", result.EffectiveFrom),
			zap.Bool("backfill", result.Backfill),
			zap.Strings("superseded", result.Superseded),
			zap.Int("changes", len(result.Changes)),
			zap.Int64("version", result.Version),
		)
	}
	for _, w := range result.Warnings {
		log.Warn("price validation warning", zap.String("warning", w))
	}
	return result, nil
}

// validate validates the request.
func (i *Interactor) validate(req *Request) (domain.Scope, error) {
	if req == nil {
		return domain.Scope{}, fmt.Errorf("%w: request is required", domain.ErrInvalidRequest)
	}
	scope, err := domain.NewScope(req.ProductID, req.OrganizationID)
	if err != nil {
		return domain.Scope{}, err
	}
	if len(req.Fields) == 0 {
		return domain.Scope{}, domain.ErrNoPriceFields
	}
	if strings.TrimSpace(req.ChangedBy) == "" {
		return domain.Scope{}, fmt.Errorf("%w: changed_by is required", domain.ErrInvalidRequest)
	}
	return scope, nil
}

func (i *Interactor) fallbackRate(ctx context.Context, req *Request, log *zap.Logger) *decimal.Decimal {
	if req.ExchangeRate != nil || i.rates == nil {
		return nil
	}
	rate, err := i.rates.Current(ctx)
	if err != nil {
		log.Warn("exchange rate lookup failed", zap.Error(err))
		return nil
	}
	return rate
}

// checkInvariants blocks a plan that breaks a timeline which was sound before
// it. A timeline that was already broken is only reported, so it can still be
// repaired by later writes.
func (i *Interactor) checkInvariants(timeline *domain.Timeline, plan *domain.SyncPlan, now time.Time, log *zap.Logger) error {
	before := timeline.CheckInvariants(now)
	after := timeline.Apply(plan).CheckInvariants(now)
	if after == nil {
		return nil
	}
	if before == nil {
		return after
	}
	log.Warn("price timeline was inconsistent before this write", zap.Error(before), zap.NamedError("after", after))
	return nil
}

func (i *Interactor) buildPlan(scope domain.Scope, version int64, plan *domain.SyncPlan) (*committer.CommitPlan, error) {
	cp := committer.NewPlan()

	for _, d := range plan.Deletions {
		cp.Add(i.intervals.DeleteMut(scope, d.ID))
	}
	for _, c := range plan.Closures {
		cp.Add(i.intervals.SetEffectiveToMut(scope, c.IntervalID, c.EffectiveTo))
	}

	mut, err := i.intervals.InsertMut(plan.Interval)
	if err != nil {
		return nil, err
	}
	cp.Add(mut)

	for idx := range plan.Changes {
		plan.Changes[idx].ID = i.newID()
		mut, err := i.changes.InsertMut(&plan.Changes[idx])
		if err != nil {
			return nil, err
		}
		cp.Add(mut)
	}

	cp.Add(i.scopes.BumpMut(scope, version))

	event := domain.NewPriceSyncedEvent(plan)
	payload, err := i.serializeEvent(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event: %w", err)
	}
	outboxEvent := i.outboxRepo.EnrichEvent(event, payload)
	cp.Add(i.outboxRepo.InsertMut(outboxEvent))

	return cp, nil
}

func (i *Interactor) logFailure(log *zap.Logger, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Info("price change rejected", zap.Strings("errors", verr.Errors), zap.Strings("warnings", verr.Warnings))
	case domain.IsConflict(err):
		log.Info("price change conflicts with current state", zap.Error(err))
	case errors.Is(err, domain.ErrTimelineInvariant):
		log.Error("price change would break the timeline", zap.Error(err))
	default:
		log.Error("price sync failed", zap.Error(err))
	}
	return err
}

// serializeEvent converts a domain event to JSON payload.
func (i *Interactor) serializeEvent(event domain.DomainEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func idOf(iv *domain.PriceInterval) string {
	if iv == nil {
		return ""
	}
	return iv.ID
}
