package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var activeProduct = &ProductInfo{ProductID: "prod-1", Name: "Desk Lamp", Status: ProductStatusActive}

func validInput(tl *Timeline, now time.Time) ValidationInput {
	return ValidationInput{
		Product:       activeProduct,
		Timeline:      tl,
		Fields:        PriceFields{listCNY: dec("105")},
		EffectiveFrom: now.Add(48 * time.Hour),
		ChangeReason:  "supplier cost increase",
		Now:           now,
	}
}

func hasMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidate_CleanChange(t *testing.T) {
	now := t0.Add(24 * time.Hour)
	r := Validate(validInput(seedTimeline(t), now))
	assert.True(t, r.IsValid())
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
	assert.NoError(t, r.Err())
}

func TestValidate_Product(t *testing.T) {
	now := t0.Add(24 * time.Hour)

	t.Run("missing product blocks", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Product = nil
		r := Validate(in)
		assert.True(t, r.Blocked())
		assert.True(t, hasMessage(r.Errors, "does not exist"))
	})

	for _, status := range []ProductStatus{ProductStatusDiscontinued, ProductStatusSuspended} {
		t.Run(string(status)+" product blocks", func(t *testing.T) {
			in := validInput(seedTimeline(t), now)
			in.Product = &ProductInfo{ProductID: "prod-1", Status: status}
			r := Validate(in)
			assert.True(t, r.Blocked())
			assert.True(t, hasMessage(r.Errors, string(status)))
		})
	}

	t.Run("inactive product may be priced", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Product = &ProductInfo{ProductID: "prod-1", Status: ProductStatusInactive}
		assert.True(t, Validate(in).IsValid())
	})
}

func TestValidate_Amounts(t *testing.T) {
	now := t0.Add(24 * time.Hour)

	t.Run("negative amount blocks", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Fields = PriceFields{listCNY: dec("-1")}
		r := Validate(in)
		require.True(t, r.Blocked())
		assert.True(t, hasMessage(r.Errors, "list_price_cny must not be negative"))

		err := r.Err()
		assert.ErrorIs(t, err, ErrPriceValidation)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Errors, 1)
	})

	t.Run("zero amount warns", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Fields = PriceFields{listCNY: dec("0")}
		r := Validate(in)
		assert.True(t, r.IsValid())
		assert.True(t, hasMessage(r.Warnings, "zero"))
	})

	t.Run("extra precision warns", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Fields = PriceFields{listCNY: dec("104.999")}
		r := Validate(in)
		assert.True(t, r.IsValid())
		assert.True(t, hasMessage(r.Warnings, "rounded to 105"))
	})

	t.Run("amount rounding to zero warns both", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Fields = PriceFields{listCNY: dec("0.004")}
		r := Validate(in)
		assert.True(t, r.IsValid())
		assert.True(t, hasMessage(r.Warnings, "will be rounded to 0"))
		assert.True(t, hasMessage(r.Warnings, "list_price_cny is zero"))
	})

	t.Run("non-positive exchange rate blocks", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.ExchangeRate = decPtr("0")
		assert.True(t, hasMessage(Validate(in).Errors, "exchange_rate must be positive"))
	})

	t.Run("below cost warns", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Fields = PriceFields{listCNY: dec("105"), costCNY: dec("110")}
		r := Validate(in)
		assert.True(t, r.IsValid())
		assert.True(t, hasMessage(r.Warnings, "below cost"))
	})

	t.Run("cost from the base interval counts", func(t *testing.T) {
		tl := NewTimeline(testScope, []*PriceInterval{{
			ID: "seed", Scope: testScope, EffectiveFrom: t0, CreatedAt: t0,
			Fields: PriceFields{listCNY: dec("100"), costCNY: dec("100")},
		}})
		in := validInput(tl, now)
		in.Fields = PriceFields{listCNY: dec("95")}
		assert.True(t, hasMessage(Validate(in).Warnings, "below cost 100"))
	})
}

func TestValidate_ChangeMagnitude(t *testing.T) {
	now := t0.Add(24 * time.Hour)
	cases := []struct {
		amount  string
		warning string
	}{
		{"105", ""},
		{"111", "changes by 11%"},
		{"89", "changes by 11%"},
		{"160", "unusually large"},
	}
	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			in := validInput(seedTimeline(t), now)
			in.Fields = PriceFields{listCNY: dec(tc.amount)}
			r := Validate(in)
			assert.True(t, r.IsValid())
			if tc.warning == "" {
				assert.Empty(t, r.Warnings)
				return
			}
			assert.True(t, hasMessage(r.Warnings, tc.warning), "warnings: %v", r.Warnings)
		})
	}
}

func TestValidate_EffectiveTime(t *testing.T) {
	now := t0.Add(400 * 24 * time.Hour)

	t.Run("too far in the past blocks", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.EffectiveFrom = now.Add(-366 * 24 * time.Hour)
		assert.True(t, hasMessage(Validate(in).Errors, "more than 365 days in the past"))
	})

	t.Run("recent past is fine", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.EffectiveFrom = now.Add(-30 * 24 * time.Hour)
		assert.True(t, Validate(in).IsValid())
	})

	t.Run("far future warns", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.EffectiveFrom = now.Add(366 * 24 * time.Hour)
		r := Validate(in)
		assert.True(t, r.IsValid())
		assert.True(t, hasMessage(r.Warnings, "future"))
	})

	t.Run("short notice warns", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.EffectiveFrom = now.Add(2 * time.Hour)
		assert.True(t, hasMessage(Validate(in).Warnings, "at least 1 day in advance"))
	})

	t.Run("bootstrap warns", func(t *testing.T) {
		in := validInput(NewTimeline(testScope, nil), now)
		in.EffectiveFrom = now
		in.Bootstrapped = true
		r := Validate(in)
		assert.True(t, r.IsValid())
		assert.True(t, hasMessage(r.Warnings, "first price"))
	})
}

func TestValidate_Frequency(t *testing.T) {
	now := t0.Add(10 * 24 * time.Hour)
	intervals := make([]*PriceInterval, 0, ChangeFrequencyLimit)
	for i := 0; i < ChangeFrequencyLimit; i++ {
		at := now.Add(-time.Duration(i+1) * 24 * time.Hour)
		iv := &PriceInterval{ID: "iv" + string(rune('a'+i)), Scope: testScope, EffectiveFrom: at, CreatedAt: at, Fields: PriceFields{listCNY: dec("100")}}
		if i > 0 {
			to := now.Add(-time.Duration(i) * 24 * time.Hour)
			iv.EffectiveTo = &to
		}
		intervals = append(intervals, iv)
	}
	r := Validate(validInput(NewTimeline(testScope, intervals), now))
	assert.True(t, r.IsValid())
	assert.True(t, hasMessage(r.Warnings, "5 times in the last 7 days"))
}

func TestValidate_ChangeReason(t *testing.T) {
	now := t0.Add(24 * time.Hour)
	for _, reason := range []string{"", "   ", "abcd"} {
		in := validInput(seedTimeline(t), now)
		in.ChangeReason = reason
		r := Validate(in)
		assert.True(t, r.IsValid())
		assert.True(t, hasMessage(r.Warnings, "change_reason"), "reason %q", reason)
	}
}

func TestValidate_TierOrdering(t *testing.T) {
	now := t0.Add(24 * time.Hour)
	in := validInput(NewTimeline(testScope, nil), now)
	in.Fields = PriceFields{
		listCNY: dec("100"),
		{Type: PriceTypeDirect, Currency: CurrencyCNY}:  dec("120"),
		{Type: PriceTypeChannel, Currency: CurrencyCNY}: dec("130"),
	}
	r := Validate(in)
	assert.True(t, r.IsValid())
	assert.True(t, hasMessage(r.Warnings, "list price 100 is below direct price 120"))
	assert.True(t, hasMessage(r.Warnings, "direct price 120 is below channel price 130"))
}

func TestValidate_ExchangeRateConsistency(t *testing.T) {
	now := t0.Add(24 * time.Hour)

	t.Run("consistent pair", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Fields = PriceFields{listCNY: dec("100"), listIDR: dec("221000")}
		assert.False(t, hasMessage(Validate(in).Warnings, "converts to"))
	})

	t.Run("inconsistent pair uses the base rate", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Fields = PriceFields{listCNY: dec("100"), listIDR: dec("300000")}
		assert.True(t, hasMessage(Validate(in).Warnings, "converts to 136.36 CNY at rate 2200"))
	})

	t.Run("supplied rate wins", func(t *testing.T) {
		in := validInput(seedTimeline(t), now)
		in.Fields = PriceFields{listCNY: dec("100"), listIDR: dec("300000")}
		in.ExchangeRate = decPtr("3000")
		assert.False(t, hasMessage(Validate(in).Warnings, "converts to"))
	})
}
