package m_price_interval

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the price_intervals table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// Key is the primary key of a price interval row.
func Key(productID, scopeKey, priceID string) spanner.Key {
	return spanner.Key{productID, scopeKey, priceID}
}

// InsertMut creates a Spanner mutation for inserting a price interval.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, []interface{}{
		data.ProductID,
		data.ScopeKey,
		data.PriceID,
		data.OrganizationID,
		data.ChannelPriceCNY,
		data.ChannelPriceIDR,
		data.DirectPriceCNY,
		data.DirectPriceIDR,
		data.ListPriceCNY,
		data.ListPriceIDR,
		data.CostPriceCNY,
		data.CostPriceIDR,
		data.ExchangeRate,
		data.EffectiveFrom,
		data.EffectiveTo,
		data.Source,
		data.ChangeReason,
		data.ChangedBy,
		data.CreatedAt,
	})
}

// SetEffectiveToMut moves the end of an interval. An invalid effectiveTo
// reopens it.
func (m *Model) SetEffectiveToMut(productID, scopeKey, priceID string, effectiveTo spanner.NullTime) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{ProductID, ScopeKey, PriceID, EffectiveTo},
		[]interface{}{productID, scopeKey, priceID, effectiveTo},
	)
}

// DeleteMut creates a Spanner mutation for deleting a price interval.
func (m *Model) DeleteMut(productID, scopeKey, priceID string) *spanner.Mutation {
	return spanner.Delete(TableName, Key(productID, scopeKey, priceID))
}
