package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation thresholds.
const (
	MaxBackdate            = 365 * 24 * time.Hour
	MaxLeadTime            = 365 * 24 * time.Hour
	MinAnnouncementLead    = 24 * time.Hour
	ChangeFrequencyWindow  = 7 * 24 * time.Hour
	ChangeFrequencyLimit   = 5
	MinChangeReasonLength  = 5
	MaxFXDeviationPercent  = 5
	LargeChangePercent     = 10
	VeryLargeChangePercent = 50
)

// ValidationInput is everything the rules look at. Validate reads it and
// nothing else.
type ValidationInput struct {
	Product       *ProductInfo // nil when the product does not exist
	Timeline      *Timeline
	Fields        PriceFields
	ExchangeRate  *decimal.Decimal
	EffectiveFrom time.Time
	Bootstrapped  bool
	ChangeReason  string
	Now           time.Time
}

// ValidationResult is the outcome of Validate. Errors block the write;
// warnings are advisory and never block.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid reports whether no blocking error was found.
func (r *ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

// Blocked is the negation of IsValid.
func (r *ValidationResult) Blocked() bool { return len(r.Errors) > 0 }

// Err returns a *ValidationError when blocked, nil otherwise.
func (r *ValidationResult) Err() error {
	if !r.Blocked() {
		return nil
	}
	return &ValidationError{
		Errors:   append([]string(nil), r.Errors...),
		Warnings: append([]string(nil), r.Warnings...),
	}
}

func (r *ValidationResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate runs the business rules on a proposed change. It is strict on
// existence and lifecycle and liberal on magnitude: only a missing or locked
// product, a negative amount, a non-positive exchange rate or an
// effective time too far in the past are errors.
func Validate(in ValidationInput) *ValidationResult {
	r := &ValidationResult{}

	// 1-2. product existence and lifecycle
	if in.Product == nil {
		r.errorf("product does not exist")
	} else if in.Product.Status.PriceLocked() {
		r.errorf("product is %s, its price is locked", in.Product.Status)
	}

	base := in.Timeline.EffectiveAt(in.EffectiveFrom)
	var baseFields PriceFields
	var baseRate *decimal.Decimal
	if base != nil {
		baseFields = base.Fields
		baseRate = base.ExchangeRate
	}

	// 3. value sanity
	for _, k := range AllFields {
		v, ok := in.Fields.Get(k)
		if !ok {
			continue
		}
		if v.IsNegative() {
			r.errorf("%s must not be negative (got %s)", k.Name(), v)
			continue
		}
		// The stored amount is the rounded one, so 0.004 is a zero price.
		stored := v.Round(AmountScale)
		if !stored.Equal(v) {
			r.warnf("%s has more than %d decimal places and will be rounded to %s", k.Name(), AmountScale, stored)
		}
		if stored.IsZero() {
			r.warnf("%s is zero, confirm the product is meant to be free", k.Name())
		}
	}
	if in.ExchangeRate != nil && !in.ExchangeRate.IsPositive() {
		r.errorf("exchange_rate must be positive (got %s)", in.ExchangeRate)
	}

	// 4. cost floor
	for _, c := range Currencies {
		costKey := FieldKey{Type: PriceTypeCost, Currency: c}
		cost, ok := in.Fields.Get(costKey)
		if !ok {
			cost, ok = baseFields.Get(costKey)
		}
		if !ok {
			continue
		}
		for _, pt := range []PriceType{PriceTypeChannel, PriceTypeDirect, PriceTypeList} {
			k := FieldKey{Type: pt, Currency: c}
			if v, ok := in.Fields.Get(k); ok && v.LessThan(cost) {
				r.warnf("%s %s is below cost %s", k.Name(), v, cost)
			}
		}
	}

	// 5. magnitude of change against the price in force at effective_from
	for _, k := range AllFields {
		v, ok := in.Fields.Get(k)
		if !ok {
			continue
		}
		old, ok := baseFields.Get(k)
		if !ok || !old.IsPositive() {
			continue
		}
		pct := v.Sub(old).Abs().Div(old).Mul(hundred)
		switch {
		case pct.GreaterThanOrEqual(decimal.NewFromInt(VeryLargeChangePercent)):
			r.warnf("%s changes by %s%% (%s -> %s), an unusually large swing: double-check the amount", k.Name(), pct.Round(1), old, v)
		case pct.GreaterThanOrEqual(decimal.NewFromInt(LargeChangePercent)):
			r.warnf("%s changes by %s%% (%s -> %s)", k.Name(), pct.Round(1), old, v)
		}
	}

	// 6. effective time bounds
	if in.Bootstrapped {
		r.warnf("first price of the scope takes effect immediately; requested effective time was ignored")
	}
	switch {
	case in.EffectiveFrom.Before(in.Now.Add(-MaxBackdate)):
		r.errorf("effective_from %s is more than 365 days in the past", in.EffectiveFrom.Format(time.RFC3339))
	case in.EffectiveFrom.After(in.Now.Add(MaxLeadTime)):
		r.warnf("effective_from %s is more than 365 days in the future", in.EffectiveFrom.Format(time.RFC3339))
	case in.EffectiveFrom.After(in.Now) && in.EffectiveFrom.Before(in.Now.Add(MinAnnouncementLead)):
		r.warnf("effective_from is less than 1 day ahead; announce price changes at least 1 day in advance")
	}

	// 7. change frequency
	if n := in.Timeline.CreatedSince(in.Now.Add(-ChangeFrequencyWindow)); n >= ChangeFrequencyLimit {
		r.warnf("price changed %d times in the last 7 days", n)
	}

	// 8. change reason
	if utf8.RuneCountInString(strings.TrimSpace(in.ChangeReason)) < MinChangeReasonLength {
		r.warnf("change_reason is missing or shorter than %d characters", MinChangeReasonLength)
	}

	// 9. list >= direct >= channel
	for _, c := range Currencies {
		list, okL := in.Fields.Get(FieldKey{Type: PriceTypeList, Currency: c})
		direct, okD := in.Fields.Get(FieldKey{Type: PriceTypeDirect, Currency: c})
		channel, okC := in.Fields.Get(FieldKey{Type: PriceTypeChannel, Currency: c})
		if !okL || !okD || !okC {
			continue
		}
		if list.LessThan(direct) {
			r.warnf("%s list price %s is below direct price %s", c, list, direct)
		}
		if direct.LessThan(channel) {
			r.warnf("%s direct price %s is below channel price %s", c, direct, channel)
		}
	}

	// 10. FX consistency
	rate := in.ExchangeRate
	if rate == nil {
		rate = baseRate
	}
	if rate != nil && rate.IsPositive() {
		for _, pt := range PriceTypes {
			cny, okC := in.Fields.Get(FieldKey{Type: pt, Currency: CurrencyCNY})
			idr, okI := in.Fields.Get(FieldKey{Type: pt, Currency: CurrencyIDR})
			if !okC || !okI || !cny.IsPositive() {
				continue
			}
			implied := idr.Div(*rate)
			diff := implied.Sub(cny).Abs().Div(cny).Mul(hundred)
			if diff.GreaterThan(decimal.NewFromInt(MaxFXDeviationPercent)) {
				r.warnf("%s IDR price %s converts to %s CNY at rate %s, %s%% off the CNY price %s",
					pt, idr, implied.Round(AmountScale), rate, diff.Round(1), cny)
			}
		}
	}

	return r
}
