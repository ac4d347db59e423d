package yahoo

import (
	"context"
	"errors"
	"testing"

	finance "github.com/piquette/finance-go"
	"github.com/rustyeddy/stocktrader/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoterPrice(t *testing.T) {
	t.Parallel()

	var asked string
	q := NewQuoterWith(func(symbol string) (*finance.Quote, error) {
		asked = symbol
		return &finance.Quote{Symbol: symbol, RegularMarketPrice: 228.91}, nil
	})

	px, err := q.Price(context.Background(), " msft ")
	require.NoError(t, err)
	assert.Equal(t, 228.91, px)
	assert.Equal(t, "MSFT", asked)
}

func TestQuoterPrice_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		get  QuoteFunc
		want string
	}{
		{"upstream error", func(string) (*finance.Quote, error) { return nil, errors.New("boom") }, "boom"},
		{"not found", func(string) (*finance.Quote, error) { return nil, nil }, "symbol not found"},
		{"zero price", func(s string) (*finance.Quote, error) { return &finance.Quote{Symbol: s}, nil }, "no market price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewQuoterWith(tt.get).Price(context.Background(), "XYZ")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, errors.Is(err, market.ErrProvider))
		})
	}
}

func TestQuoterPrice_CanceledContext(t *testing.T) {
	t.Parallel()

	called := false
	q := NewQuoterWith(func(string) (*finance.Quote, error) {
		called = true
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Price(ctx, "XYZ")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.NotNil(t, NewQuoter())
}
