package paper

import (
	"context"
	"errors"
	"testing"

	"github.com/rustyeddy/stocktrader/broker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPrices map[string]float64

func (f fixedPrices) Price(_ context.Context, ticker string) (float64, error) {
	px, ok := f[ticker]
	if !ok {
		return 0, errors.New("unknown ticker")
	}
	return px, nil
}

func TestPlaceOrder_BuyThenSell(t *testing.T) {
	t.Parallel()

	prices := fixedPrices{"AAPL": 100}
	b := New(prices)
	ctx := context.Background()

	fill, err := b.PlaceOrder(ctx, broker.OrderRequest{Ticker: "AAPL", Quantity: 2, Side: broker.Buy})
	require.NoError(t, err)
	assert.Equal(t, 100.0, fill.Price)
	assert.Equal(t, "filled", fill.State)
	assert.NotEmpty(t, fill.OrderID)

	prices["AAPL"] = 110
	_, err = b.PlaceOrder(ctx, broker.OrderRequest{Ticker: "AAPL", Quantity: 1, Side: broker.Sell})
	require.NoError(t, err)

	pos, ok := b.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, 1.0, pos.Quantity)
	assert.InDelta(t, 90.0, pos.Cost, 1e-9)

	fills := b.Fills()
	require.Len(t, fills, 2)
	assert.Equal(t, broker.Sell, fills[1].Side)
	assert.NotEqual(t, fills[0].OrderID, fills[1].OrderID)

	_, ok = b.Position("MSFT")
	assert.False(t, ok)
}

func TestPlaceOrder_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := New(fixedPrices{}).PlaceOrder(ctx, broker.OrderRequest{Ticker: "AAPL", Quantity: 1, Side: broker.Buy})
	require.Error(t, err)
	assert.True(t, errors.Is(err, broker.ErrOrder))

	_, err = New(fixedPrices{"AAPL": 1}).PlaceOrder(ctx, broker.OrderRequest{Ticker: "AAPL", Side: broker.Buy})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity must be positive")

	_, err = New(nil).PlaceOrder(ctx, broker.OrderRequest{Ticker: "AAPL", Quantity: 1, Side: broker.Buy})
	assert.ErrorIs(t, err, ErrNoPrice)
}
