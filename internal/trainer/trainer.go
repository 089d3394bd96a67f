package trainer

import (
	"context"
	"fmt"
	"time"

	"cryptoForecaster/internal/domain"
	"cryptoForecaster/internal/features"
	"cryptoForecaster/internal/ports"
	"cryptoForecaster/internal/regression"
)

const (
	// DefaultLookback is how many of the most recent bars are read as raw
	// training input (a soft cap, not a hard minimum).
	DefaultLookback = 5000
	// DefaultMinRows is the minimum feature-table size required to train.
	DefaultMinRows = 200

	// versionLayout formats the training completion instant into a sortable
	// version tag, e.g. "20240101_153045".
	versionLayout = "20060102_150405"
)

// Config holds configuration for the trainer.
type Config struct {
	Lookback int               // Bars read from storage (default 5000)
	MinRows  int               // Minimum feature rows to train (default 200)
	Model    regression.Config // Hyperparameters for the boosted ensemble
}

// Trainer fits a regression model on stored price history, evaluates it on a
// held-out chronological tail, and persists the artifact plus a metric row.
type Trainer struct {
	cfg     Config
	logger  ports.Logger
	prices  ports.PriceRepository
	metrics ports.MetricRepository
	store   ports.ModelStore
	now     func() time.Time // Injectable clock for version tagging
}

// New creates a new trainer instance.
func New(cfg Config, logger ports.Logger, prices ports.PriceRepository, metrics ports.MetricRepository, store ports.ModelStore) (*Trainer, error) {
	if logger == nil || prices == nil || metrics == nil || store == nil {
		return nil, fmt.Errorf("missing required dependencies for Trainer")
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.MinRows <= 0 {
		cfg.MinRows = DefaultMinRows
	}

	return &Trainer{
		cfg:     cfg,
		logger:  logger,
		prices:  prices,
		metrics: metrics,
		store:   store,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Train runs one full training cycle for the symbol:
// read history, build features, walk-forward split, fit, evaluate, persist.
// On failure the current model is never replaced: at most an immutable
// versioned file has been staged, and the promotion into the live slot only
// happens after the metric row is recorded.
func (t *Trainer) Train(ctx context.Context, symbol string) (*domain.TrainingReport, error) {
	bars, err := t.prices.ReadLatest(ctx, symbol, t.cfg.Lookback)
	if err != nil {
		return nil, fmt.Errorf("reading training input for %s: %w", symbol, err)
	}

	table, target := features.Build(bars)
	if len(table.Rows) < t.cfg.MinRows {
		return nil, fmt.Errorf("feature table for %s has %d rows, need at least %d: %w",
			symbol, len(table.Rows), t.cfg.MinRows, ports.ErrInsufficientData)
	}

	// Strict walk-forward split: earliest 80% trains, latest 20% validates.
	// No shuffling, ever; shuffling a time series leaks future data.
	split := len(table.Rows) * 8 / 10
	trainX, valX := table.Rows[:split], table.Rows[split:]
	trainY, valY := target[:split], target[split:]

	model := regression.New(t.cfg.Model)
	if err := model.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("fitting model for %s: %w", symbol, err)
	}

	preds := model.PredictBatch(valX)
	mae, err := regression.MeanAbsoluteError(valY, preds)
	if err != nil {
		return nil, fmt.Errorf("evaluating MAE for %s: %w", symbol, err)
	}
	rmse, err := regression.RootMeanSquaredError(valY, preds)
	if err != nil {
		return nil, fmt.Errorf("evaluating RMSE for %s: %w", symbol, err)
	}

	// Stage the immutable versioned file first, record the metric, and only
	// then promote into the current slot. A metric-append failure thus never
	// leaves a replaced model without its metric row.
	version := t.now().Format(versionLayout)
	if _, err := t.store.Stage(ctx, &ports.ModelArtifact{
		Version:  version,
		Features: table.Columns,
		Model:    model,
	}); err != nil {
		return nil, fmt.Errorf("staging model %s for %s: %w", version, symbol, err)
	}

	metric := &domain.ModelMetric{
		ModelVersion: version,
		TrainEndTS:   bars[len(bars)-1].Timestamp, // Newest bar seen during training
		MAE:          mae,
		RMSE:         rmse,
		CreatedAt:    t.now(),
	}
	if err := t.metrics.AppendMetric(ctx, metric); err != nil {
		return nil, fmt.Errorf("recording metric for model %s: %w", version, err)
	}

	artifactPath, err := t.store.Promote(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("promoting model %s for %s: %w", version, symbol, err)
	}

	report := &domain.TrainingReport{
		Version:      version,
		MAE:          mae,
		RMSE:         rmse,
		ArtifactPath: artifactPath,
		Rows:         len(bars),
		Features:     len(table.Columns),
	}
	t.logger.Info(ctx, "Training completed", map[string]interface{}{
		"symbol": symbol, "version": version, "mae": mae, "rmse": rmse,
		"featureRows": len(table.Rows), "rawBars": len(bars),
	})
	return report, nil
}
