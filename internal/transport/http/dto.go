package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/app/price/usecases/sync_price"
)

// Response is the envelope of every JSON response.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Details  []ValidationDetail `json:"details,omitempty"`
	Errors   []string           `json:"errors,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}

// ValidationDetail names one malformed request field.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SyncPriceRequest is the body of POST /prices. Amounts accept JSON numbers
// or strings.
type SyncPriceRequest struct {
	OrganizationID  *string                    `json:"organization_id" binding:"omitempty,max=64"`
	Fields          map[string]decimal.Decimal `json:"fields" binding:"required,min=1,dive,keys,price_field,endkeys"`
	ExchangeRate    *decimal.Decimal           `json:"exchange_rate"`
	ChangeReason    string                     `json:"change_reason" binding:"max=500"`
	EffectiveFrom   *time.Time                 `json:"effective_from"`
	ExpectedVersion *int64                     `json:"expected_version" binding:"omitempty,min=0"`
	Source          string                     `json:"source" binding:"omitempty,oneof=manual import supplier"`
}

// ValidatePriceRequest is the body of POST /prices/validate.
type ValidatePriceRequest struct {
	OrganizationID *string                    `json:"organization_id" binding:"omitempty,max=64"`
	Fields         map[string]decimal.Decimal `json:"fields" binding:"required,min=1,dive,keys,price_field,endkeys"`
	ExchangeRate   *decimal.Decimal           `json:"exchange_rate"`
	ChangeReason   string                     `json:"change_reason" binding:"max=500"`
	EffectiveFrom  *time.Time                 `json:"effective_from"`
}

// ScopeQuery selects the organization scope of a product; empty means generic.
type ScopeQuery struct {
	OrganizationID string `form:"organization_id" binding:"max=64"`
}

// EffectivePriceQuery is the query string of GET /prices/effective.
type EffectivePriceQuery struct {
	OrganizationID string `form:"organization_id" binding:"max=64"`
	At             string `form:"at"` // RFC 3339, empty means now
}

// CancelFutureQuery is the query string of DELETE /prices/future.
type CancelFutureQuery struct {
	OrganizationID  string `form:"organization_id" binding:"max=64"`
	Reason          string `form:"reason" binding:"max=500"`
	ExpectedVersion *int64 `form:"expected_version" binding:"omitempty,min=0"`
}

// ChangeLogQuery is the query string of GET /price-changes.
type ChangeLogQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// PriceIntervalResponse is one timeline interval.
type PriceIntervalResponse struct {
	PriceID        string            `json:"price_id"`
	ProductID      string            `json:"product_id"`
	OrganizationID *string           `json:"organization_id,omitempty"`
	Fields         map[string]string `json:"fields"`
	ExchangeRate   *string           `json:"exchange_rate,omitempty"`
	EffectiveFrom  time.Time         `json:"effective_from"`
	EffectiveTo    *time.Time        `json:"effective_to,omitempty"`
	Source         string            `json:"source,omitempty"`
	ChangeReason   string            `json:"change_reason,omitempty"`
	ChangedBy      string            `json:"changed_by,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// SyncPriceResponse is returned by POST /prices.
type SyncPriceResponse struct {
	Interval     *PriceIntervalResponse `json:"interval"`
	NoOp         bool                   `json:"no_op"`
	Backfill     bool                   `json:"backfill"`
	Bootstrapped bool                   `json:"bootstrapped"`
	Superseded   []string               `json:"superseded,omitempty"`
	Changes      []ChangeLogResponse    `json:"changes"`
	Warnings     []string               `json:"warnings"`
	Version      int64                  `json:"version"`
}

// ValidatePriceResponse is returned by POST /prices/validate.
type ValidatePriceResponse struct {
	IsValid       bool      `json:"is_valid"`
	Errors        []string  `json:"errors"`
	Warnings      []string  `json:"warnings"`
	EffectiveFrom time.Time `json:"effective_from"`
	Bootstrapped  bool      `json:"bootstrapped"`
	Version       int64     `json:"version"`
}

// EffectivePriceResponse is returned by GET /prices/effective.
type EffectivePriceResponse struct {
	At       time.Time              `json:"at"`
	Interval *PriceIntervalResponse `json:"interval"`
}

// TimelineResponse is returned by GET /prices.
type TimelineResponse struct {
	ProductID      string                   `json:"product_id"`
	OrganizationID *string                  `json:"organization_id,omitempty"`
	Intervals      []*PriceIntervalResponse `json:"intervals"`
	CurrentID      string                   `json:"current_price_id,omitempty"`
	PendingID      string                   `json:"pending_price_id,omitempty"`
}

// ChangeLogResponse is one audit row.
type ChangeLogResponse struct {
	ChangeID       string    `json:"change_id"`
	ProductID      string    `json:"product_id"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	PriceID        string    `json:"price_id"`
	ChangeType     string    `json:"change_type"`
	PriceType      string    `json:"price_type"`
	Currency       string    `json:"currency"`
	OldPrice       *string   `json:"old_price"`
	NewPrice       string    `json:"new_price"`
	Delta          string    `json:"delta"`
	DeltaPct       *string   `json:"delta_pct"`
	ChangeReason   string    `json:"change_reason,omitempty"`
	ChangedBy      string    `json:"changed_by"`
	ChangedAt      time.Time `json:"changed_at"`
}

func toFields(in map[string]decimal.Decimal) (domain.PriceFields, error) {
	out := make(domain.PriceFields, len(in))
	for name, v := range in {
		key, err := domain.ParseFieldKey(name)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func toIntervalResponse(iv *domain.PriceInterval) *PriceIntervalResponse {
	if iv == nil {
		return nil
	}
	return &PriceIntervalResponse{
		PriceID:        iv.ID,
		ProductID:      iv.Scope.ProductID(),
		OrganizationID: iv.Scope.OrganizationIDPtr(),
		Fields:         iv.Fields.Names(),
		ExchangeRate:   decimalString(iv.ExchangeRate),
		EffectiveFrom:  iv.EffectiveFrom,
		EffectiveTo:    iv.EffectiveTo,
		Source:         iv.Source,
		ChangeReason:   iv.ChangeReason,
		ChangedBy:      iv.ChangedBy,
		CreatedAt:      iv.CreatedAt,
	}
}

func toChangeLogResponses(entries []domain.ChangeLogEntry) []ChangeLogResponse {
	out := make([]ChangeLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ChangeLogResponse{
			ChangeID:       e.ID,
			ProductID:      e.Scope.ProductID(),
			OrganizationID: e.Scope.OrganizationIDPtr(),
			PriceID:        e.PriceID,
			ChangeType:     string(e.ChangeType),
			PriceType:      string(e.PriceType),
			Currency:       string(e.Currency),
			OldPrice:       decimalString(e.OldPrice),
			NewPrice:       e.NewPrice.String(),
			Delta:          e.Delta.String(),
			DeltaPct:       decimalString(e.DeltaPct),
			ChangeReason:   e.ChangeReason,
			ChangedBy:      e.ChangedBy,
			ChangedAt:      e.ChangedAt,
		})
	}
	return out
}

func toSyncResponse(res *sync_price.Result) *SyncPriceResponse {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return &SyncPriceResponse{
		Interval:     toIntervalResponse(res.Interval),
		NoOp:         res.NoOp,
		Backfill:     res.Backfill,
		Bootstrapped: res.Bootstrapped,
		Superseded:   res.Superseded,
		Changes:      toChangeLogResponses(res.Changes),
		Warnings:     warnings,
		Version:      res.Version,
	}
}
