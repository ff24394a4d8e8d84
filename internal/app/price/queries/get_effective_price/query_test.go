package get_effective_price

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
	"github.com/light-bringer/pricing-service/tests/testutil"
)

func TestGetEffectivePrice(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	handover := now.Add(48 * time.Hour)
	listCNY := domain.FieldKey{Type: domain.PriceTypeList, Currency: domain.CurrencyCNY}
	scope := domain.GenericScope("prod-1")

	clk := clock.NewMockClock(now)
	store := testutil.NewMemoryStore(clk)
	store.PutIntervals(scope,
		&domain.PriceInterval{ID: "current", Scope: scope, EffectiveFrom: now.Add(-time.Hour), EffectiveTo: &handover,
			Fields: domain.PriceFields{listCNY: decimal.NewFromInt(100)}},
		&domain.PriceInterval{ID: "future", Scope: scope, EffectiveFrom: handover,
			Fields: domain.PriceFields{listCNY: decimal.NewFromInt(110)}},
	)
	q := NewQuery(store.ReadModel(), clk)

	res, err := q.Execute(context.Background(), &Request{ProductID: "prod-1"})
	require.NoError(t, err)
	assert.Equal(t, "current", res.Interval.ID)
	assert.Equal(t, now, res.At)

	res, err = q.Execute(context.Background(), &Request{ProductID: "prod-1", At: &handover})
	require.NoError(t, err)
	assert.Equal(t, "future", res.Interval.ID, "effective_to is exclusive")

	before := now.Add(-2 * time.Hour)
	_, err = q.Execute(context.Background(), &Request{ProductID: "prod-1", At: &before})
	assert.ErrorIs(t, err, domain.ErrPriceNotFound)

	org := "org-1"
	_, err = q.Execute(context.Background(), &Request{ProductID: "prod-1", OrganizationID: &org})
	assert.ErrorIs(t, err, domain.ErrPriceNotFound, "organizations do not inherit the generic price")

	_, err = q.Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
}
