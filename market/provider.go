package market

import (
	"context"
	"errors"
	"fmt"
)

// Provider supplies EMA series and the weekly close used for charting.
type Provider interface {
	EMA(ctx context.Context, ticker string, cadence Cadence) (Series, error)
	WeeklyClose(ctx context.Context, ticker string) (Series, error)
}

// PriceSource returns the live price of a ticker at call time.
type PriceSource interface {
	Price(ctx context.Context, ticker string) (float64, error)
}

// ErrProvider is matched by every *ProviderError via errors.Is.
var ErrProvider = errors.New("market data provider error")

// ProviderError reports an unreachable data source or a malformed payload.
type ProviderError struct {
	Source string
	Ticker string
	Op     string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Source, e.Op, e.Ticker, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// NewProviderError is a small helper for provider implementations.
func NewProviderError(source, op, ticker string, err error) error {
	return &ProviderError{Source: source, Op: op, Ticker: ticker, Err: err}
}
