package m_price_change_log

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents an append-only change log row in the database.
type Data struct {
	LogID          string              `spanner:"log_id"`
	ProductID      string              `spanner:"product_id"`
	ScopeKey       string              `spanner:"scope_key"`
	OrganizationID spanner.NullString  `spanner:"organization_id"`
	PriceID        string              `spanner:"price_id"`
	ChangeType     string              `spanner:"change_type"`
	PriceType      string              `spanner:"price_type"`
	Currency       string              `spanner:"currency"`
	OldPrice       spanner.NullNumeric `spanner:"old_price"`
	NewPrice       big.Rat             `spanner:"new_price"`
	Delta          big.Rat             `spanner:"delta"`
	DeltaPct       spanner.NullNumeric `spanner:"delta_pct"`
	ChangeReason   spanner.NullString  `spanner:"change_reason"`
	ChangedBy      string              `spanner:"changed_by"`
	ChangedAt      time.Time           `spanner:"changed_at"`
}

// Model provides type-safe database operations for the change log.
// Rows are only ever inserted.
type Model struct{}

// NewModel creates a new change log model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation for inserting a change log row.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, []interface{}{
		data.LogID,
		data.ProductID,
		data.ScopeKey,
		data.OrganizationID,
		data.PriceID,
		data.ChangeType,
		data.PriceType,
		data.Currency,
		data.OldPrice,
		&data.NewPrice,
		&data.Delta,
		data.DeltaPct,
		data.ChangeReason,
		data.ChangedBy,
		data.ChangedAt,
	})
}
