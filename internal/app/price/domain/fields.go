package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceType is one of the four price tiers carried by an interval.
type PriceType string

const (
	PriceTypeChannel PriceType = "channel"
	PriceTypeDirect  PriceType = "direct"
	PriceTypeList    PriceType = "list"
	PriceTypeCost    PriceType = "cost"
)

// Currency is one of the two currencies every tier is quoted in.
type Currency string

const (
	CurrencyCNY Currency = "CNY"
	CurrencyIDR Currency = "IDR"
)

// PriceTypes lists the tiers in storage order.
var PriceTypes = []PriceType{PriceTypeChannel, PriceTypeDirect, PriceTypeList, PriceTypeCost}

// Currencies lists the supported currencies in storage order.
var Currencies = []Currency{CurrencyCNY, CurrencyIDR}

// AmountScale is the number of decimal places stored for an amount.
const AmountScale = 2

// FieldKey addresses one of the eight amounts of an interval.
type FieldKey struct {
	Type     PriceType
	Currency Currency
}

// AllFields lists the eight (price type, currency) pairs in storage order.
var AllFields = func() []FieldKey {
	keys := make([]FieldKey, 0, len(PriceTypes)*len(Currencies))
	for _, pt := range PriceTypes {
		for _, c := range Currencies {
			keys = append(keys, FieldKey{Type: pt, Currency: c})
		}
	}
	return keys
}()

// Name is the column and JSON name of the field, e.g. list_price_cny.
func (k FieldKey) Name() string {
	return fmt.Sprintf("%s_price_%s", k.Type, strings.ToLower(string(k.Currency)))
}

func (k FieldKey) String() string {
	return fmt.Sprintf("%s/%s", k.Type, k.Currency)
}

// ParseFieldKey is the inverse of FieldKey.Name.
func ParseFieldKey(name string) (FieldKey, error) {
	for _, k := range AllFields {
		if k.Name() == name {
			return k, nil
		}
	}
	return FieldKey{}, fmt.Errorf("%w: unknown price field %q", ErrInvalidRequest, name)
}

// PriceFields holds the subset of amounts that are present.
// A missing key means null (not supplied, or never set).
type PriceFields map[FieldKey]decimal.Decimal

// Get returns the amount for k and whether it is present.
func (f PriceFields) Get(k FieldKey) (decimal.Decimal, bool) {
	v, ok := f[k]
	return v, ok
}

// Ptr returns the amount for k or nil.
func (f PriceFields) Ptr(k FieldKey) *decimal.Decimal {
	v, ok := f[k]
	if !ok {
		return nil
	}
	return &v
}

// Clone returns a shallow copy. Decimal values are immutable.
func (f PriceFields) Clone() PriceFields {
	out := make(PriceFields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Overlay returns a copy of f with every amount in other applied on top.
func (f PriceFields) Overlay(other PriceFields) PriceFields {
	out := f.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Rounded returns a copy with all amounts rounded to AmountScale places.
func (f PriceFields) Rounded() PriceFields {
	out := make(PriceFields, len(f))
	for k, v := range f {
		out[k] = v.Round(AmountScale)
	}
	return out
}

// Covers reports whether every amount in other is present in f with an equal value.
func (f PriceFields) Covers(other PriceFields) bool {
	for k, v := range other {
		cur, ok := f[k]
		if !ok || !cur.Equal(v) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same amounts.
func (f PriceFields) Equal(other PriceFields) bool {
	return len(f) == len(other) && f.Covers(other)
}

// Names renders the fields keyed by column name, for events and logs.
func (f PriceFields) Names() map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k.Name()] = v.String()
	}
	return out
}
