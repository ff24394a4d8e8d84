package m_price_scope

// Field name constants for the price_scopes table.
const (
	TableName = "price_scopes"

	ProductID      = "product_id"
	ScopeKey       = "scope_key"
	OrganizationID = "organization_id"
	Version        = "version"
	UpdatedAt      = "updated_at"
)
