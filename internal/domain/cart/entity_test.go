package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productdom "storefront/internal/domain/product"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func product(id int, price float64) productdom.Product {
	return productdom.Product{
		ID:        id,
		Title:     "Product",
		Price:     price,
		Thumbnail: "https://cdn.example.com/thumb.jpg",
	}
}

func TestCart_Add_FirstAddWins(t *testing.T) {
	c := &Cart{Email: "shopper@example.com"}

	changed, err := c.Add(product(1, 10), 2, now)
	require.NoError(t, err)
	assert.True(t, changed)

	// Re-adding the same product id changes nothing, even with a
	// different quantity.
	changed, err = c.Add(product(1, 10), 5, now)
	require.NoError(t, err)
	assert.False(t, changed)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestCart_Add_RejectsQuantityBelowOne(t *testing.T) {
	c := &Cart{Email: "shopper@example.com"}

	for _, qty := range []int{0, -1} {
		changed, err := c.Add(product(1, 10), qty, now)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.False(t, changed)
	}
	assert.Empty(t, c.Items)
}

func TestCart_Remove_AbsentIsNoOp(t *testing.T) {
	c := &Cart{Email: "shopper@example.com"}
	_, err := c.Add(product(1, 10), 1, now)
	require.NoError(t, err)

	assert.False(t, c.Remove(99, now))
	require.Len(t, c.Items, 1)

	assert.True(t, c.Remove(1, now))
	assert.Empty(t, c.Items)
}

func TestCart_SetQuantity(t *testing.T) {
	c := &Cart{Email: "shopper@example.com"}
	_, err := c.Add(product(1, 10), 1, now)
	require.NoError(t, err)

	changed, err := c.SetQuantity(1, 3, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 3, c.Items[0].Quantity)

	// same quantity: no change
	changed, err = c.SetQuantity(1, 3, now)
	require.NoError(t, err)
	assert.False(t, changed)

	// absent id: no change, no error
	changed, err = c.SetQuantity(99, 2, now)
	require.NoError(t, err)
	assert.False(t, changed)

	// qty < 1 rejected before any mutation
	changed, err = c.SetQuantity(1, 0, now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.False(t, changed)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestCart_Totals(t *testing.T) {
	c := &Cart{Email: "shopper@example.com"}

	_, err := c.Add(product(1, 10), 2, now)
	require.NoError(t, err)
	_, err = c.Add(product(2, 5), 1, now)
	require.NoError(t, err)

	assert.InDelta(t, 25.0, c.TotalPrice(), 1e-9)
	assert.Equal(t, 2, c.ItemCount(), "count is distinct line items, not quantity sum")
}

func TestCart_TotalPrice_NoFloatDrift(t *testing.T) {
	c := &Cart{Email: "shopper@example.com"}
	_, err := c.Add(product(1, 0.1), 3, now)
	require.NoError(t, err)

	assert.Equal(t, 0.3, c.TotalPrice())
}

func TestCart_Replace_DropsInvalidAndDuplicateRows(t *testing.T) {
	c := &Cart{Email: "shopper@example.com"}

	c.Replace([]LineItem{
		{ProductID: 1, Title: "a", Price: 10, Quantity: 1},
		{ProductID: 1, Title: "a again", Price: 10, Quantity: 4},
		{ProductID: 0, Title: "bad id", Price: 1, Quantity: 1},
		{ProductID: 2, Title: "b", Price: 5, Quantity: 0},
		{ProductID: 3, Title: "c", Price: 7, Quantity: 2},
	}, now)

	require.Len(t, c.Items, 2)
	assert.Equal(t, 1, c.Items[0].ProductID)
	assert.Equal(t, 1, c.Items[0].Quantity, "first occurrence wins")
	assert.Equal(t, 3, c.Items[1].ProductID)
}

func TestNew_RejectsInvalidEmail(t *testing.T) {
	_, err := New("not-an-email", nil, now)
	assert.ErrorIs(t, err, ErrInvalidCart)

	c, err := New("shopper@example.com", nil, now)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestNewLineItem_Validation(t *testing.T) {
	_, err := NewLineItem(productdom.Product{ID: 0}, 1)
	assert.ErrorIs(t, err, ErrInvalidCart)

	_, err = NewLineItem(product(1, 10), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	it, err := NewLineItem(product(1, 10), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, it.ProductID)
	assert.Equal(t, 2, it.Quantity)
}
