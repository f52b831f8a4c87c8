package cart

import (
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeItems(t *testing.T) {
	t.Run("absent cart", func(t *testing.T) {
		items, err := DecodeItems(nil)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("corrupt cart", func(t *testing.T) {
		_, err := DecodeItems([]byte(`[{"id":`))
		assert.Error(t, err)
	})

	t.Run("normalizes stored lines", func(t *testing.T) {
		items, err := DecodeItems([]byte(`[
			{"id":"p1","name":"A","price":10,"quantity":2,"image":"a.jpg","variant":"red"},
			{"id":"p1","name":"B","price":12,"quantity":1,"image":"b.jpg","variant":"red"},
			{"id":"p2","name":"C","price":5,"quantity":0,"image":"c.jpg"}
		]`))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Quantity)
		assert.Equal(t, "A", items[0].Name)
	})
}

func TestEncodeItems(t *testing.T) {
	data, err := EncodeItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals([]model.CartLineItem{
		{ProductID: "p1", UnitPrice: 0.1, Quantity: 3},
		{ProductID: "p2", UnitPrice: 22.99, Quantity: 2},
	})
	assert.Equal(t, 5, totals.ItemCount)
	assert.Equal(t, "46.28", totals.Subtotal.String())

	empty := ComputeTotals(nil)
	assert.Equal(t, 0, empty.ItemCount)
	assert.True(t, empty.Subtotal.IsZero())
}
