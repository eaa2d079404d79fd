package services

import (
	"context"
	"testing"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_GetCartIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.True(t, first.IsEmpty())

	second, err := f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCartService_AddItem(t *testing.T) {
	tests := []struct {
		name          string
		adds          []int64
		stock         int64
		expectedError error
		expectedQty   int64
	}{
		{name: "new line", adds: []int64{2}, stock: 5, expectedQty: 2},
		{name: "same product merges into one line", adds: []int64{2, 3}, stock: 5, expectedQty: 5},
		{name: "merged quantity over stock", adds: []int64{3, 3}, stock: 5, expectedError: domain.ErrInsufficientStock, expectedQty: 3},
		{name: "quantity over stock", adds: []int64{5}, stock: 3, expectedError: domain.ErrInsufficientStock},
		{name: "zero quantity", adds: []int64{0}, stock: 3, expectedError: domain.ErrInvalidQuantity},
		{name: "negative quantity", adds: []int64{-1}, stock: 3, expectedError: domain.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			p := f.product(t, "Pen", "1.50", tt.stock)

			var err error
			for _, qty := range tt.adds {
				_, err = f.carts.AddItem(ctx, f.buyer.ID, p.ID, qty)
			}
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
			}

			cart, err := f.carts.GetCart(ctx, f.buyer.ID)
			require.NoError(t, err)
			if tt.expectedQty == 0 {
				assert.True(t, cart.IsEmpty())
				return
			}
			require.Len(t, cart.Items, 1)
			assert.Equal(t, tt.expectedQty, cart.Items[0].Quantity)
			assert.Equal(t, tt.stock, f.stockOf(t, p.ID), "carts never reserve stock")
		})
	}
}

func TestCartService_AddItem_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.carts.AddItem(context.Background(), f.buyer.ID, 424242, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartService_UpdateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pen := f.product(t, "Pen", "1.50", 10)
	ink := f.product(t, "Ink", "4.00", 2)
	f.addToCart(t, f.buyer, pen.ID, 4)

	cart, err := f.carts.UpdateItem(ctx, f.buyer.ID, pen.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cart.Line(pen.ID).Quantity, "update replaces the quantity")

	_, err = f.carts.UpdateItem(ctx, f.buyer.ID, pen.ID, 11)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.carts.UpdateItem(ctx, f.buyer.ID, pen.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.carts.UpdateItem(ctx, f.buyer.ID, ink.ID, 1)
	assert.ErrorIs(t, err, domain.ErrItemNotInCart)

	cart, err = f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1), cart.Items[0].Quantity)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pen := f.product(t, "Pen", "1.50", 10)
	ink := f.product(t, "Ink", "4.00", 10)
	f.addToCart(t, f.buyer, pen.ID, 1)
	f.addToCart(t, f.buyer, ink.ID, 2)

	cart, err := f.carts.RemoveItem(ctx, f.buyer.ID, 999)
	require.NoError(t, err, "removing an absent product is not an error")
	assert.Len(t, cart.Items, 2)

	cart, err = f.carts.RemoveItem(ctx, f.buyer.ID, pen.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, ink.ID, cart.Items[0].ProductID)

	cart, err = f.carts.RemoveItem(ctx, f.buyer.ID, pen.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	cart, err = f.carts.Clear(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	stored, err := f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsEmpty())
	assert.Equal(t, cart.ID, stored.ID, "an emptied cart persists")
}

func TestCartService_CartsArePerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pen := f.product(t, "Pen", "1.50", 10)
	f.addToCart(t, f.buyer, pen.ID, 1)

	other, err := f.carts.GetCart(ctx, f.seller.ID)
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}
