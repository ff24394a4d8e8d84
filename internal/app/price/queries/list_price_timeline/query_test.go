package list_price_timeline

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

func TestListPriceTimeline(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	mid := now.Add(-24 * time.Hour)
	handover := now.Add(48 * time.Hour)
	listCNY := domain.FieldKey{Type: domain.PriceTypeList, Currency: domain.CurrencyCNY}
	scope := domain.GenericScope("prod-1")
	fields := domain.PriceFields{listCNY: decimal.NewFromInt(100)}

	clk := clock.NewMockClock(now)
	store := testutil.NewMemoryStore(clk)
	store.PutIntervals(scope,
		&domain.PriceInterval{ID: "future", Scope: scope, EffectiveFrom: handover, Fields: fields},
		&domain.PriceInterval{ID: "old", Scope: scope, EffectiveFrom: mid.Add(-time.Hour), EffectiveTo: &mid, Fields: fields},
		&domain.PriceInterval{ID: "current", Scope: scope, EffectiveFrom: mid, EffectiveTo: &handover, Fields: fields},
	)
	q := NewQuery(store.ReadModel(), clk)

	res, err := q.Execute(context.Background(), &Request{ProductID: "prod-1"})
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Intervals))
	for _, iv := range res.Intervals {
		ids = append(ids, iv.ID)
	}
	assert.Equal(t, []string{"old", "current", "future"}, ids)
	require.NotNil(t, res.Current)
	assert.Equal(t, "current", res.Current.ID)
	require.NotNil(t, res.Pending)
	assert.Equal(t, "future", res.Pending.ID)

	org := "org-1"
	res, err = q.Execute(context.Background(), &Request{ProductID: "prod-1", OrganizationID: &org})
	require.NoError(t, err)
	assert.Empty(t, res.Intervals)
	assert.Nil(t, res.Current)
	assert.Nil(t, res.Pending)
}
