package predictor

import (
	"context"
	"fmt"
	"time"

	"cryptoForecaster/internal/domain"
	"cryptoForecaster/internal/features"
	"cryptoForecaster/internal/ports"
)

// DefaultLookback is how many of the most recent bars are read for inference.
// Only the newest feature window is actually used; the generous read keeps
// the call shape identical to training.
const DefaultLookback = 5000

// Config holds configuration for the predictor.
type Config struct {
	Lookback int // Bars read from storage (default 5000)
}

// Predictor loads the current model artifact and produces a single next-step
// close forecast from the most recent prices.
type Predictor struct {
	cfg    Config
	logger ports.Logger
	prices ports.PriceRepository
	store  ports.ModelStore
	now    func() time.Time // Injectable clock for the generation timestamp
}

// New creates a new predictor instance.
func New(cfg Config, logger ports.Logger, prices ports.PriceRepository, store ports.ModelStore) (*Predictor, error) {
	if logger == nil || prices == nil || store == nil {
		return nil, fmt.Errorf("missing required dependencies for Predictor")
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}

	return &Predictor{
		cfg:    cfg,
		logger: logger,
		prices: prices,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Predict infers the next close for the symbol from the newest stored bars.
// The inference row is the target-free feature row over the latest bar, so
// the forecast is conditioned on the most recent close rather than the
// second-newest one.
func (p *Predictor) Predict(ctx context.Context, symbol string) (*domain.Prediction, error) {
	artifact, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading model for %s: %w", symbol, err)
	}

	bars, err := p.prices.ReadLatest(ctx, symbol, p.cfg.Lookback)
	if err != nil {
		return nil, fmt.Errorf("reading inference input for %s: %w", symbol, err)
	}

	row, lastTS, ok := features.Latest(bars)
	if !ok {
		return nil, fmt.Errorf("history for %s is too short (%d bars, need %d): %w",
			symbol, len(bars), features.MinBarsForLatest, ports.ErrNoFeatures)
	}

	lastClose := bars[len(bars)-1].Close
	predicted := artifact.Model.Predict(row)
	delta := predicted - lastClose
	deltaPct := 0.0
	if lastClose != 0 {
		deltaPct = delta / lastClose
	}

	prediction := &domain.Prediction{
		Symbol:             symbol,
		PredictedNextClose: predicted,
		LastClose:          lastClose,
		Delta:              delta,
		DeltaPct:           deltaPct,
		ModelVersion:       artifact.Version,
		LastTS:             lastTS,
		PredictedAt:        p.now(),
	}
	p.logger.Debug(ctx, "Prediction generated", map[string]interface{}{
		"symbol": symbol, "predicted": predicted, "lastClose": lastClose, "version": artifact.Version,
	})
	return prediction, nil
}
