package cancel_future_price

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
	"github.com/light-bringer/pricing-service/tests/testutil"
)

var (
	now     = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	scope   = domain.GenericScope("prod-1")
	listCNY = domain.FieldKey{Type: domain.PriceTypeList, Currency: domain.CurrencyCNY}
)

func priceInterval(id string, from time.Time, to *time.Time, amount int64) *domain.PriceInterval {
	return &domain.PriceInterval{
		ID:            id,
		Scope:         scope,
		Fields:        domain.PriceFields{listCNY: decimal.NewFromInt(amount)},
		EffectiveFrom: from,
		EffectiveTo:   to,
		CreatedAt:     from,
	}
}

func setup(t *testing.T) (*testutil.MemoryStore, *Interactor) {
	t.Helper()
	clk := clock.NewMockClock(now)
	store := testutil.NewMemoryStore(clk)
	return store, NewInteractor(store.Intervals(), store.Scopes(), store.Outbox(), store.Runner(), clk, nil)
}

func TestCancelFuturePrice_ReopensCurrent(t *testing.T) {
	store, interactor := setup(t)
	handover := now.Add(48 * time.Hour)
	store.PutIntervals(scope,
		priceInterval("current", now.Add(-time.Hour), &handover, 100),
		priceInterval("future", handover, nil, 110),
	)

	res, err := interactor.Execute(context.Background(), &Request{
		ProductID:   "prod-1",
		CancelledBy: "user-1",
		Reason:      "launch postponed",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"future"}, res.Cancelled)
	require.NotNil(t, res.Current)
	assert.Equal(t, "current", res.Current.ID)
	assert.Nil(t, res.Current.EffectiveTo)
	assert.Equal(t, int64(1), res.Version)

	tl := store.Timeline(scope)
	require.Equal(t, 1, tl.Len())
	assert.Nil(t, tl.Find("current").EffectiveTo)
	assert.NoError(t, tl.CheckInvariants(now))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "price.future_cancelled", events[0].EventType)
	var payload domain.PriceFutureCancelledEvent
	require.NoError(t, json.Unmarshal([]byte(events[0].Payload), &payload))
	assert.Equal(t, []string{"future"}, payload.CancelledIDs)
	assert.Equal(t, "launch postponed", payload.Reason)
}

func TestCancelFuturePrice_NothingPending(t *testing.T) {
	store, interactor := setup(t)
	store.PutIntervals(scope, priceInterval("current", now.Add(-time.Hour), nil, 100))

	_, err := interactor.Execute(context.Background(), &Request{ProductID: "prod-1", CancelledBy: "user-1"})
	assert.ErrorIs(t, err, domain.ErrNoPendingFuturePrice)
	assert.Equal(t, 0, store.Commits)
	assert.Equal(t, int64(0), store.Version(scope))
}

func TestCancelFuturePrice_ExpectedVersion(t *testing.T) {
	store, interactor := setup(t)
	handover := now.Add(48 * time.Hour)
	store.PutIntervals(scope,
		priceInterval("current", now.Add(-time.Hour), &handover, 100),
		priceInterval("future", handover, nil, 110),
	)

	stale := int64(3)
	_, err := interactor.Execute(context.Background(), &Request{ProductID: "prod-1", CancelledBy: "user-1", ExpectedVersion: &stale})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, 2, store.Timeline(scope).Len())
}

func TestCancelFuturePrice_InvalidRequest(t *testing.T) {
	_, interactor := setup(t)

	_, err := interactor.Execute(context.Background(), &Request{ProductID: "prod-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = interactor.Execute(context.Background(), &Request{CancelledBy: "user-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
}
