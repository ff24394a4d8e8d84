package m_price_interval

// Field name constants for the price_intervals table.
const (
	TableName = "price_intervals"

	ProductID       = "product_id"
	ScopeKey        = "scope_key"
	PriceID         = "price_id"
	OrganizationID  = "organization_id"
	ChannelPriceCNY = "channel_price_cny"
	ChannelPriceIDR = "channel_price_idr"
	DirectPriceCNY  = "direct_price_cny"
	DirectPriceIDR  = "direct_price_idr"
	ListPriceCNY    = "list_price_cny"
	ListPriceIDR    = "list_price_idr"
	CostPriceCNY    = "cost_price_cny"
	CostPriceIDR    = "cost_price_idr"
	ExchangeRate    = "exchange_rate"
	EffectiveFrom   = "effective_from"
	EffectiveTo     = "effective_to"
	Source          = "source"
	ChangeReason    = "change_reason"
	ChangedBy       = "changed_by"
	CreatedAt       = "created_at"
)

// Columns lists every column in the order Data declares them.
var Columns = []string{
	ProductID,
	ScopeKey,
	PriceID,
	OrganizationID,
	ChannelPriceCNY,
	ChannelPriceIDR,
	DirectPriceCNY,
	DirectPriceIDR,
	ListPriceCNY,
	ListPriceIDR,
	CostPriceCNY,
	CostPriceIDR,
	ExchangeRate,
	EffectiveFrom,
	EffectiveTo,
	Source,
	ChangeReason,
	ChangedBy,
	CreatedAt,
}
