package m_price_interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount(t *testing.T) {
	var d Data
	for _, col := range []string{
		ChannelPriceCNY, ChannelPriceIDR,
		DirectPriceCNY, DirectPriceIDR,
		ListPriceCNY, ListPriceIDR,
		CostPriceCNY, CostPriceIDR,
	} {
		ptr := d.Amount(col)
		require.NotNil(t, ptr, col)
		ptr.Valid = true
	}
	assert.True(t, d.ListPriceIDR.Valid)
	assert.True(t, d.CostPriceCNY.Valid)
	assert.Nil(t, d.Amount(ExchangeRate))
}
