package m_price_change_log

// Table name constant
const TableName = "price_change_logs"

// Field name constants for type-safe database access
const (
	LogID          = "log_id"
	ProductID      = "product_id"
	ScopeKey       = "scope_key"
	OrganizationID = "organization_id"
	PriceID        = "price_id"
	ChangeType     = "change_type"
	PriceType      = "price_type"
	Currency       = "currency"
	OldPrice       = "old_price"
	NewPrice       = "new_price"
	Delta          = "delta"
	DeltaPct       = "delta_pct"
	ChangeReason   = "change_reason"
	ChangedBy      = "changed_by"
	ChangedAt      = "changed_at"
)

// Columns lists every column in the order Data declares them.
var Columns = []string{
	LogID,
	ProductID,
	ScopeKey,
	OrganizationID,
	PriceID,
	ChangeType,
	PriceType,
	Currency,
	OldPrice,
	NewPrice,
	Delta,
	DeltaPct,
	ChangeReason,
	ChangedBy,
	ChangedAt,
}
