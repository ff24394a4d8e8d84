package sync_price

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
	"github.com/light-bringer/pricing-service/internal/pkg/exchangerate"
	"github.com/light-bringer/pricing-service/tests/testutil"
)

var (
	start   = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	listCNY = domain.FieldKey{Type: domain.PriceTypeList, Currency: domain.CurrencyCNY}
	costCNY = domain.FieldKey{Type: domain.PriceTypeCost, Currency: domain.CurrencyCNY}
	generic = domain.GenericScope("prod-1")
)

type fixture struct {
	store      *testutil.MemoryStore
	clock      *clock.MockClock
	interactor *Interactor
}

func newFixture(t *testing.T, rates exchangerate.Resolver) *fixture {
	t.Helper()
	clk := clock.NewMockClock(start)
	store := testutil.NewMemoryStore(clk)
	store.PutProduct("prod-1", domain.ProductStatusActive)
	return &fixture{
		store: store,
		clock: clk,
		interactor: NewInteractor(
			store.Intervals(),
			store.Changes(),
			store.Scopes(),
			store.Products(),
			store.Outbox(),
			store.Runner(),
			rates,
			clk,
			nil,
		),
	}
}

func list(amount string) domain.PriceFields {
	return domain.PriceFields{listCNY: decimal.RequireFromString(amount)}
}

func request(fields domain.PriceFields) *Request {
	return &Request{
		ProductID:    "prod-1",
		Fields:       fields,
		ChangeReason: "quarterly price review",
		ChangedBy:    "user-1",
	}
}

func TestSyncPrice_BootstrapIgnoresRequestedTime(t *testing.T) {
	f := newFixture(t, nil)
	req := request(list("100"))
	future := start.Add(48 * time.Hour)
	req.EffectiveFrom = &future

	res, err := f.interactor.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, res.Bootstrapped)
	assert.False(t, res.NoOp)
	assert.Equal(t, start, res.EffectiveFrom)
	assert.Equal(t, start, res.Interval.EffectiveFrom)
	assert.Nil(t, res.Interval.EffectiveTo)
	assert.NotEmpty(t, res.Warnings)
	assert.Equal(t, int64(1), res.Version)

	tl := f.store.Timeline(generic)
	require.Equal(t, 1, tl.Len())
	assert.Equal(t, res.Interval.ID, tl.Current(start).ID)
	assert.Equal(t, int64(1), f.store.Version(generic))

	logs := f.store.ChangeLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ChangeTypeCreate, logs[0].ChangeType)
	assert.NotEmpty(t, logs[0].ID)
	assert.Equal(t, res.Interval.ID, logs[0].PriceID)

	events := f.store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "price.synced", events[0].EventType)
	assert.Equal(t, "prod-1", events[0].AggregateID)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(events[0].Payload), &payload))
	assert.Equal(t, res.Interval.ID, payload["price_id"])
}

func TestSyncPrice_ImmediateUpdateClosesCurrent(t *testing.T) {
	f := newFixture(t, nil)
	first, err := f.interactor.Execute(context.Background(), request(list("100")))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	res, err := f.interactor.Execute(context.Background(), request(list("120")))
	require.NoError(t, err)

	now := start.Add(time.Hour)
	tl := f.store.Timeline(generic)
	require.Equal(t, 2, tl.Len())
	closed := tl.Find(first.Interval.ID)
	require.NotNil(t, closed.EffectiveTo)
	assert.Equal(t, now, *closed.EffectiveTo)
	assert.Equal(t, res.Interval.ID, tl.Current(now).ID)

	require.Len(t, res.Changes, 1)
	change := res.Changes[0]
	assert.Equal(t, domain.ChangeTypeUpdate, change.ChangeType)
	assert.True(t, change.Delta.Equal(decimal.NewFromInt(20)))
	require.NotNil(t, change.DeltaPct)
	assert.True(t, change.DeltaPct.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, int64(2), res.Version)
	assert.NoError(t, tl.CheckInvariants(now))
}

func TestSyncPrice_NoOpWritesNothing(t *testing.T) {
	f := newFixture(t, nil)
	first, err := f.interactor.Execute(context.Background(), request(domain.PriceFields{
		listCNY: decimal.RequireFromString("100"),
		costCNY: decimal.RequireFromString("60"),
	}))
	require.NoError(t, err)
	commits := f.store.Commits

	f.clock.Advance(time.Hour)
	res, err := f.interactor.Execute(context.Background(), request(list("100.00")))
	require.NoError(t, err)

	assert.True(t, res.NoOp)
	assert.Equal(t, first.Interval.ID, res.Interval.ID)
	assert.Empty(t, res.Changes)
	assert.Equal(t, int64(1), res.Version)
	assert.Equal(t, commits, f.store.Commits)
	assert.Equal(t, 1, f.store.Timeline(generic).Len())
	assert.Len(t, f.store.Events(), 1)
}

func TestSyncPrice_SecondFutureConflicts(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.interactor.Execute(context.Background(), request(list("100")))
	require.NoError(t, err)

	future := start.Add(72 * time.Hour)
	req := request(list("110"))
	req.EffectiveFrom = &future
	scheduled, err := f.interactor.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, future, scheduled.Interval.EffectiveFrom)

	later := start.Add(96 * time.Hour)
	req = request(list("130"))
	req.EffectiveFrom = &later
	_, err = f.interactor.Execute(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPendingFuturePrice)
	assert.True(t, domain.IsConflict(err))

	assert.Equal(t, 2, f.store.Timeline(generic).Len())
	assert.Equal(t, int64(2), f.store.Version(generic))
}

func TestSyncPrice_ImmediateSupersedesFuture(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.interactor.Execute(context.Background(), request(list("100")))
	require.NoError(t, err)

	future := start.Add(72 * time.Hour)
	req := request(list("110"))
	req.EffectiveFrom = &future
	scheduled, err := f.interactor.Execute(context.Background(), req)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	res, err := f.interactor.Execute(context.Background(), request(list("105")))
	require.NoError(t, err)

	assert.Equal(t, []string{scheduled.Interval.ID}, res.Superseded)
	tl := f.store.Timeline(generic)
	assert.Nil(t, tl.Find(scheduled.Interval.ID))
	assert.Empty(t, tl.Futures(f.clock.Now()))
	assert.Nil(t, tl.Current(f.clock.Now()).EffectiveTo)
}

func TestSyncPrice_ValidationBlocks(t *testing.T) {
	t.Run("locked product", func(t *testing.T) {
		f := newFixture(t, nil)
		f.store.PutProduct("prod-1", domain.ProductStatusDiscontinued)

		_, err := f.interactor.Execute(context.Background(), request(list("100")))
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.ErrorIs(t, err, domain.ErrPriceValidation)
		assert.NotEmpty(t, verr.Errors)
		assert.Equal(t, 0, f.store.Commits)
	})

	t.Run("missing product", func(t *testing.T) {
		f := newFixture(t, nil)
		req := request(list("100"))
		req.ProductID = "prod-missing"

		_, err := f.interactor.Execute(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrPriceValidation)
	})

	t.Run("negative amount", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.interactor.Execute(context.Background(), request(list("-1")))
		assert.ErrorIs(t, err, domain.ErrPriceValidation)
		assert.Equal(t, 0, f.store.Timeline(generic).Len())
	})
}

func TestSyncPrice_ExpectedVersion(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.interactor.Execute(context.Background(), request(list("100")))
	require.NoError(t, err)

	stale := int64(0)
	req := request(list("120"))
	req.ExpectedVersion = &stale
	_, err = f.interactor.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	f.clock.Advance(time.Hour)
	current := int64(1)
	req.ExpectedVersion = &current
	res, err := f.interactor.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Version)
}

func TestSyncPrice_FallbackExchangeRate(t *testing.T) {
	rate := decimal.RequireFromString("2250")
	f := newFixture(t, exchangerate.NewStatic(&rate))

	res, err := f.interactor.Execute(context.Background(), request(list("100")))
	require.NoError(t, err)
	require.NotNil(t, res.Interval.ExchangeRate)
	assert.True(t, res.Interval.ExchangeRate.Equal(rate))

	f.clock.Advance(time.Hour)
	explicit := decimal.RequireFromString("2300")
	req := request(list("120"))
	req.ExchangeRate = &explicit
	res, err = f.interactor.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Interval.ExchangeRate.Equal(explicit))
}

func TestSyncPrice_OrganizationScopeIsIndependent(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.interactor.Execute(context.Background(), request(list("100")))
	require.NoError(t, err)

	org := "org-9"
	req := request(list("90"))
	req.OrganizationID = &org
	res, err := f.interactor.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, res.Bootstrapped)
	assert.Equal(t, "org:org-9", res.Interval.Scope.Key())
	assert.Equal(t, 1, f.store.Timeline(generic).Len())
	assert.Equal(t, int64(1), f.store.Version(domain.OrganizationScope("prod-1", org)))
}

func TestSyncPrice_InvalidRequest(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.interactor.Execute(context.Background(), request(nil))
	assert.ErrorIs(t, err, domain.ErrNoPriceFields)

	req := request(list("1"))
	req.ChangedBy = " "
	_, err = f.interactor.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	req = request(list("1"))
	req.ProductID = ""
	_, err = f.interactor.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidScope)

	_, err = f.interactor.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSyncPrice_FailedCommitLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, nil)
	f.store.FailCommit = errors.New("aborted")

	_, err := f.interactor.Execute(context.Background(), request(list("100")))
	require.Error(t, err)
	assert.Equal(t, 0, f.store.Timeline(generic).Len())
	assert.Empty(t, f.store.ChangeLogs())
	assert.Empty(t, f.store.Events())
	assert.Equal(t, int64(0), f.store.Version(generic))
}
