package ports

import (
	"context"
	"time"

	"cryptoForecaster/internal/domain"
)

// MarketDataClient defines the interface for fetching candle data from an
// external market-data source. This abstraction decouples the pipeline from
// any specific exchange implementation.
type MarketDataClient interface {
	// GetKlines retrieves up to limit of the most recent candles for the
	// given symbol and interval, normalized into price bars.
	// Fails with ErrSourceUnavailable on transport or non-2xx errors.
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.PriceBar, error)

	// GetKlinesRange retrieves all candles between start and end, paging
	// through the source as needed.
	GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.PriceBar, error)
}
