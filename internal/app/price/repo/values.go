package repo

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/shopspring/decimal"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

// Spanner NUMERIC carries 9 fractional digits.
const numericScale = 9

func toNullNumeric(d *decimal.Decimal) spanner.NullNumeric {
	if d == nil {
		return spanner.NullNumeric{}
	}
	return spanner.NullNumeric{Numeric: *d.Rat(), Valid: true}
}

func toRat(d decimal.Decimal) big.Rat {
	return *d.Rat()
}

func fromRat(r *big.Rat) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(r.FloatString(numericScale))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid numeric %s: %w", r.String(), err)
	}
	return d, nil
}

func fromNullNumeric(n spanner.NullNumeric) (*decimal.Decimal, error) {
	if !n.Valid {
		return nil, nil
	}
	d, err := fromRat(&n.Numeric)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func toNullTime(t *time.Time) spanner.NullTime {
	if t == nil {
		return spanner.NullTime{}
	}
	return spanner.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(t spanner.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func toNullString(s string) spanner.NullString {
	return spanner.NullString{StringVal: s, Valid: s != ""}
}

func fromNullString(s spanner.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.StringVal
}

func organizationColumn(scope domain.Scope) spanner.NullString {
	id, ok := scope.OrganizationID()
	return spanner.NullString{StringVal: id, Valid: ok}
}
