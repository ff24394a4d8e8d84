package m_product

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the products table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// ReadColumns returns the column names for reading a product.
func (m *Model) ReadColumns() []string {
	return []string{ProductID, Name, Status, CreatedAt, UpdatedAt}
}

// UpsertMut writes a product row. It is used by the seed tooling and tests;
// the service itself never writes products.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		[]string{ProductID, Name, Status, CreatedAt, UpdatedAt},
		[]interface{}{
			data.ProductID,
			data.Name,
			data.Status,
			spanner.CommitTimestamp,
			spanner.CommitTimestamp,
		},
	)
}

// UpdateStatusMut changes the lifecycle status of a product.
func (m *Model) UpdateStatusMut(productID, status string) *spanner.Mutation {
	return spanner.Update(
		TableName,
		[]string{ProductID, Status, UpdatedAt},
		[]interface{}{productID, status, spanner.CommitTimestamp},
	)
}
