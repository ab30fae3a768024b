package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineItem_CopiesImages(t *testing.T) {
	p := Product{ID: "p1", Title: "Cold pack", Price: decimal.RequireFromString("9.90"), Images: []string{"a.jpg"}}

	item := NewLineItem(p, 2)
	p.Images[0] = "changed.jpg"

	assert.Equal(t, "p1", item.ID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, []string{"a.jpg"}, item.Images)
	assert.Nil(t, item.TotalPrice)
}

func TestLineItem_Normalize(t *testing.T) {
	for _, qty := range []int{-3, 0} {
		assert.Equal(t, 1, LineItem{ID: "p", Quantity: qty}.Normalize().Quantity)
	}
	assert.Equal(t, 4, LineItem{ID: "p", Quantity: 4}.Normalize().Quantity)
}

func TestCloneItems(t *testing.T) {
	total := decimal.NewFromInt(20)
	items := []LineItem{{ID: "p1", Images: []string{"a.jpg"}, Quantity: 2, TotalPrice: &total}}

	clone := CloneItems(items)
	clone[0].Images[0] = "b.jpg"
	*clone[0].TotalPrice = decimal.NewFromInt(1)

	assert.Equal(t, "a.jpg", items[0].Images[0])
	assert.True(t, items[0].TotalPrice.Equal(decimal.NewFromInt(20)))
	assert.Nil(t, CloneItems(nil))
	assert.Equal(t, 2, TotalQuantity(items))
}

func TestOrderSummary_IsZero(t *testing.T) {
	assert.True(t, OrderSummary{}.IsZero())
	assert.False(t, OrderSummary{TotalShipmentPrice: decimal.NewFromInt(49)}.IsZero())
}

func TestQuote_AcceptsNumericAndQuotedMoney(t *testing.T) {
	body := `{
		"cart": [{"id": "p1", "title": "Cold pack", "price": 9.9, "quantity": 2, "totalPrice": "19.80"}],
		"orderInfo": {"totalItems": 2, "totalItemsPrice": "19.80", "totalShipmentPrice": 49,
			"totalVatPrice": 17.2, "totalPrice": "86.00"}
	}`

	var q Quote
	require.NoError(t, json.Unmarshal([]byte(body), &q))

	require.Len(t, q.Cart, 1)
	assert.True(t, q.Cart[0].Price.Equal(decimal.RequireFromString("9.9")))
	require.NotNil(t, q.Cart[0].TotalPrice)
	assert.True(t, q.Cart[0].TotalPrice.Equal(decimal.RequireFromString("19.8")))
	assert.Equal(t, 2, q.OrderInfo.TotalItems)
	assert.True(t, q.OrderInfo.TotalPrice.Equal(decimal.NewFromInt(86)))
}
