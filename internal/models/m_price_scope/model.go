package m_price_scope

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the per-scope version row that serializes writers.
type Data struct {
	ProductID      string             `spanner:"product_id"`
	ScopeKey       string             `spanner:"scope_key"`
	OrganizationID spanner.NullString `spanner:"organization_id"`
	Version        int64              `spanner:"version"`
	UpdatedAt      time.Time          `spanner:"updated_at"`
}

// Model provides a facade for type-safe operations on the price_scopes table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// Key is the primary key of a scope row.
func Key(productID, scopeKey string) spanner.Key {
	return spanner.Key{productID, scopeKey}
}

// ReadColumns returns the column names for reading a scope row.
func (m *Model) ReadColumns() []string {
	return []string{ProductID, ScopeKey, OrganizationID, Version, UpdatedAt}
}

// UpsertMut writes the scope row with the given version.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(TableName,
		[]string{ProductID, ScopeKey, OrganizationID, Version, UpdatedAt},
		[]interface{}{data.ProductID, data.ScopeKey, data.OrganizationID, data.Version, spanner.CommitTimestamp},
	)
}
