package repo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

var (
	listCNY = domain.FieldKey{Type: domain.PriceTypeList, Currency: domain.CurrencyCNY}
	costIDR = domain.FieldKey{Type: domain.PriceTypeCost, Currency: domain.CurrencyIDR}
	at      = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleInterval() *domain.PriceInterval {
	rate := dec("2215.5")
	end := at.Add(48 * time.Hour)
	return &domain.PriceInterval{
		ID:            "price-1",
		Scope:         domain.OrganizationScope("prod-1", "org-9"),
		Fields:        domain.PriceFields{listCNY: dec("199.99"), costIDR: dec("150000")},
		ExchangeRate:  &rate,
		EffectiveFrom: at,
		EffectiveTo:   &end,
		Source:        domain.SourceImport,
		ChangeReason:  "annual import",
		ChangedBy:     "importer",
		CreatedAt:     at.Add(-time.Hour),
	}
}

func TestIntervalRowConversion(t *testing.T) {
	iv := sampleInterval()
	data := IntervalToData(iv)

	assert.Equal(t, "prod-1", data.ProductID)
	assert.Equal(t, "org:org-9", data.ScopeKey)
	assert.True(t, data.OrganizationID.Valid)
	assert.Equal(t, "org-9", data.OrganizationID.StringVal)
	assert.True(t, data.ListPriceCNY.Valid)
	assert.False(t, data.ListPriceIDR.Valid)
	assert.True(t, data.CostPriceIDR.Valid)
	assert.True(t, data.EffectiveTo.Valid)

	back, err := DataToInterval(data)
	require.NoError(t, err)
	assert.True(t, back.Scope.Equal(iv.Scope))
	assert.True(t, back.Fields.Equal(iv.Fields))
	assert.True(t, back.ExchangeRate.Equal(*iv.ExchangeRate))
	assert.Equal(t, iv.EffectiveFrom, back.EffectiveFrom)
	assert.Equal(t, *iv.EffectiveTo, *back.EffectiveTo)
	assert.Equal(t, iv.ChangeReason, back.ChangeReason)
	assert.Equal(t, iv.CreatedAt, back.CreatedAt)
}

func TestIntervalRowConversion_GenericOpenEnded(t *testing.T) {
	iv := sampleInterval()
	iv.Scope = domain.GenericScope("prod-1")
	iv.EffectiveTo = nil
	iv.ExchangeRate = nil
	iv.ChangeReason = ""

	data := IntervalToData(iv)
	assert.Equal(t, "generic", data.ScopeKey)
	assert.False(t, data.OrganizationID.Valid)
	assert.False(t, data.EffectiveTo.Valid)
	assert.False(t, data.ExchangeRate.Valid)
	assert.False(t, data.ChangeReason.Valid)

	back, err := DataToInterval(data)
	require.NoError(t, err)
	assert.Nil(t, back.EffectiveTo)
	assert.Nil(t, back.ExchangeRate)
	assert.True(t, back.IsOpen())
}

func TestDataToInterval_RejectsUnknownScope(t *testing.T) {
	data := IntervalToData(sampleInterval())
	data.ScopeKey = "region:eu"
	_, err := DataToInterval(data)
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
}

func TestChangeLogRowConversion(t *testing.T) {
	old := dec("100")
	pct := dec("-12.5")
	entry := &domain.ChangeLogEntry{
		ID:         "log-1",
		Scope:      domain.GenericScope("prod-1"),
		PriceID:    "price-2",
		ChangeType: domain.ChangeTypeUpdate,
		PriceType:  domain.PriceTypeList,
		Currency:   domain.CurrencyCNY,
		OldPrice:   &old,
		NewPrice:   dec("87.5"),
		Delta:      dec("-12.5"),
		DeltaPct:   &pct,
		ChangedBy:  "alice",
		ChangedAt:  at,
	}

	data := EntryToData(entry)
	assert.Equal(t, "list", data.PriceType)
	assert.Equal(t, "CNY", data.Currency)
	assert.False(t, data.ChangeReason.Valid)

	back, err := DataToEntry(data)
	require.NoError(t, err)
	assert.True(t, back.OldPrice.Equal(old))
	assert.True(t, back.NewPrice.Equal(entry.NewPrice))
	assert.True(t, back.Delta.Equal(entry.Delta))
	assert.True(t, back.DeltaPct.Equal(pct))
	assert.Equal(t, entry.ChangeType, back.ChangeType)
	assert.Equal(t, at, back.ChangedAt)
}

func TestMutations(t *testing.T) {
	intervals := NewPriceIntervalRepo()

	mut, err := intervals.InsertMut(sampleInterval())
	require.NoError(t, err)
	assert.NotNil(t, mut)

	noID := sampleInterval()
	noID.ID = ""
	_, err = intervals.InsertMut(noID)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	scope := domain.GenericScope("prod-1")
	end := at
	assert.NotNil(t, intervals.SetEffectiveToMut(scope, "price-1", &end))
	assert.NotNil(t, intervals.SetEffectiveToMut(scope, "price-1", nil))
	assert.NotNil(t, intervals.DeleteMut(scope, "price-1"))

	_, err = NewChangeLogRepo().InsertMut(&domain.ChangeLogEntry{Scope: scope})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	assert.NotNil(t, NewScopeLockRepo().BumpMut(scope, 3))
}

func TestStatements(t *testing.T) {
	scope := domain.OrganizationScope("prod-1", "org-9")

	locked := TimelineStatement(scope, true)
	assert.Contains(t, locked.SQL, "WHERE product_id = @p0 AND scope_key = @p1")
	assert.Contains(t, locked.SQL, "ORDER BY effective_from ASC, created_at ASC FOR UPDATE")
	assert.Equal(t, "org:org-9", locked.Params["p1"])

	assert.NotContains(t, TimelineStatement(scope, false).SQL, "FOR UPDATE")

	eff := EffectiveAtStatement(scope, at)
	assert.Contains(t, eff.SQL, "effective_from <= @p2 AND (effective_to IS NULL OR effective_to > @p3)")
	assert.Contains(t, eff.SQL, "LIMIT @limit")
	assert.Equal(t, at, eff.Params["p2"])
}

func TestNumericValues(t *testing.T) {
	d := dec("0.123456789")
	n := toNullNumeric(&d)
	require.True(t, n.Valid)
	back, err := fromNullNumeric(n)
	require.NoError(t, err)
	assert.True(t, back.Equal(d))

	none, err := fromNullNumeric(toNullNumeric(nil))
	require.NoError(t, err)
	assert.Nil(t, none)
}
