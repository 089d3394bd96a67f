package predictor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"cryptoForecaster/internal/adapters/modelstore"
	"cryptoForecaster/internal/domain"
	"cryptoForecaster/internal/features"
	"cryptoForecaster/internal/ports"
	"cryptoForecaster/internal/regression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// mockPriceRepo serves a fixed bar history.
type mockPriceRepo struct {
	bars []*domain.PriceBar
	err  error
}

func (m *mockPriceRepo) Upsert(ctx context.Context, bars []*domain.PriceBar) (int, error) {
	return 0, fmt.Errorf("not implemented")
}

func (m *mockPriceRepo) ReadLatest(ctx context.Context, symbol string, limit int) ([]*domain.PriceBar, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.bars) {
		return m.bars[len(m.bars)-limit:], nil
	}
	return m.bars, nil
}

func makeBars(symbol string, n int) []*domain.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]*domain.PriceBar, n)
	for i := 0; i < n; i++ {
		c := 100.0 + 0.5*float64(i)
		bars[i] = &domain.PriceBar{
			Symbol:    symbol,
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      c,
			High:      c + 0.2,
			Low:       c - 0.2,
			Close:     c,
			Volume:    10,
		}
	}
	return bars
}

func setupStore(t *testing.T) (*modelstore.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "predictor-test-*")
	require.NoError(t, err)

	store, err := modelstore.New(modelstore.Config{Dir: tmpDir, Logger: &mockLogger{}})
	require.NoError(t, err)

	return store, func() { os.RemoveAll(tmpDir) }
}

// saveFittedModel trains a model on the bars' own feature table and saves it
// under the given version.
func saveFittedModel(t *testing.T, store *modelstore.Store, bars []*domain.PriceBar, version string) {
	t.Helper()

	table, target := features.Build(bars)
	require.NotEmpty(t, table.Rows)

	model := regression.New(regression.Config{})
	require.NoError(t, model.Fit(table.Rows, target))

	_, err := store.Save(context.Background(), &ports.ModelArtifact{
		Version:  version,
		Features: table.Columns,
		Model:    model,
	})
	require.NoError(t, err)
}

func TestPredictor_Predict(t *testing.T) {
	bars := makeBars("BTCUSDT", 120)
	store, cleanup := setupStore(t)
	defer cleanup()
	saveFittedModel(t, store, bars, "20240315_093000")

	pred, err := New(Config{}, &mockLogger{}, &mockPriceRepo{bars: bars}, store)
	require.NoError(t, err)
	predictedAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	pred.now = func() time.Time { return predictedAt }

	result, err := pred.Predict(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	lastBar := bars[len(bars)-1]
	assert.Equal(t, "BTCUSDT", result.Symbol)
	assert.Equal(t, lastBar.Close, result.LastClose)
	assert.Equal(t, lastBar.Timestamp, result.LastTS)
	assert.Equal(t, "20240315_093000", result.ModelVersion)
	assert.Equal(t, predictedAt, result.PredictedAt)

	// Internal coherence of the forecast fields.
	assert.Equal(t, result.PredictedNextClose-result.LastClose, result.Delta)
	assert.Equal(t, result.Delta/result.LastClose, result.DeltaPct)

	// The trend is a steady climb of 0.5 per bar; the forecast should land in
	// the model's training range, not somewhere absurd.
	assert.InDelta(t, lastBar.Close, result.PredictedNextClose, 30)
}

func TestPredictor_PredictWithoutModel(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	pred, err := New(Config{}, &mockLogger{}, &mockPriceRepo{bars: makeBars("BTCUSDT", 120)}, store)
	require.NoError(t, err)

	_, err = pred.Predict(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrModelNotFound))
}

func TestPredictor_PredictShortHistory(t *testing.T) {
	trainBars := makeBars("BTCUSDT", 120)
	store, cleanup := setupStore(t)
	defer cleanup()
	saveFittedModel(t, store, trainBars, "20240315_093000")

	// A model exists, but only 10 bars are stored; the feature window
	// cannot be filled.
	pred, err := New(Config{}, &mockLogger{}, &mockPriceRepo{bars: trainBars[:10]}, store)
	require.NoError(t, err)

	_, err = pred.Predict(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrNoFeatures))
}

func TestPredictor_PredictNoData(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	saveFittedModel(t, store, makeBars("BTCUSDT", 120), "20240315_093000")

	repo := &mockPriceRepo{err: fmt.Errorf("no bars stored: %w", ports.ErrNoData)}
	pred, err := New(Config{}, &mockLogger{}, repo, store)
	require.NoError(t, err)

	_, err = pred.Predict(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrNoData))
}

func TestNew_Validation(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	repo := &mockPriceRepo{}

	_, err := New(Config{}, nil, repo, store)
	assert.Error(t, err)
	_, err = New(Config{}, &mockLogger{}, nil, store)
	assert.Error(t, err)
	_, err = New(Config{}, &mockLogger{}, repo, nil)
	assert.Error(t, err)

	pred, err := New(Config{}, &mockLogger{}, repo, store)
	require.NoError(t, err)
	assert.Equal(t, DefaultLookback, pred.cfg.Lookback)
}
