package ports

import (
	"context"

	"cryptoForecaster/internal/domain"
)

// PriceRepository defines the interface for storing and retrieving price bars.
type PriceRepository interface {
	// Upsert performs a set-insert of bars, silently skipping any bar whose
	// (symbol, timestamp) pair already exists. A conflict on one row never
	// aborts the others. Returns the number of rows newly persisted.
	Upsert(ctx context.Context, bars []*domain.PriceBar) (int, error)
	// ReadLatest retrieves up to limit of the most recent bars for a symbol,
	// in ascending chronological order (oldest first).
	// Returns ErrNoData when no bars exist for the symbol.
	ReadLatest(ctx context.Context, symbol string, limit int) ([]*domain.PriceBar, error)
}

// MetricRepository defines the interface for the append-only training metric log.
type MetricRepository interface {
	// AppendMetric records one training run's evaluation. Records are never
	// updated or deleted.
	AppendMetric(ctx context.Context, metric *domain.ModelMetric) error
	// ListMetrics retrieves the most recent metric records, newest first.
	ListMetrics(ctx context.Context, limit int) ([]*domain.ModelMetric, error)
}
