package m_price_interval

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a row of the price_intervals table.
type Data struct {
	ProductID       string              `spanner:"product_id"`
	ScopeKey        string              `spanner:"scope_key"`
	PriceID         string              `spanner:"price_id"`
	OrganizationID  spanner.NullString  `spanner:"organization_id"`
	ChannelPriceCNY spanner.NullNumeric `spanner:"channel_price_cny"`
	ChannelPriceIDR spanner.NullNumeric `spanner:"channel_price_idr"`
	DirectPriceCNY  spanner.NullNumeric `spanner:"direct_price_cny"`
	DirectPriceIDR  spanner.NullNumeric `spanner:"direct_price_idr"`
	ListPriceCNY    spanner.NullNumeric `spanner:"list_price_cny"`
	ListPriceIDR    spanner.NullNumeric `spanner:"list_price_idr"`
	CostPriceCNY    spanner.NullNumeric `spanner:"cost_price_cny"`
	CostPriceIDR    spanner.NullNumeric `spanner:"cost_price_idr"`
	ExchangeRate    spanner.NullNumeric `spanner:"exchange_rate"`
	EffectiveFrom   time.Time           `spanner:"effective_from"`
	EffectiveTo     spanner.NullTime    `spanner:"effective_to"`
	Source          string              `spanner:"source"`
	ChangeReason    spanner.NullString  `spanner:"change_reason"`
	ChangedBy       string              `spanner:"changed_by"`
	CreatedAt       time.Time           `spanner:"created_at"`
}

// Amount returns a pointer to the amount column with the given name, or nil.
func (d *Data) Amount(column string) *spanner.NullNumeric {
	switch column {
	case ChannelPriceCNY:
		return &d.ChannelPriceCNY
	case ChannelPriceIDR:
		return &d.ChannelPriceIDR
	case DirectPriceCNY:
		return &d.DirectPriceCNY
	case DirectPriceIDR:
		return &d.DirectPriceIDR
	case ListPriceCNY:
		return &d.ListPriceCNY
	case ListPriceIDR:
		return &d.ListPriceIDR
	case CostPriceCNY:
		return &d.CostPriceCNY
	case CostPriceIDR:
		return &d.CostPriceIDR
	}
	return nil
}
