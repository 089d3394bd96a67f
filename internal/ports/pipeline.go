package ports

import (
	"context"

	"cryptoForecaster/internal/domain"
)

// Trainer fits, evaluates and persists a model for one symbol.
type Trainer interface {
	// Train runs one full training cycle and returns its report.
	// Fails with ErrNoData when no bars are stored for the symbol, or with
	// ErrInsufficientData when too few feature rows survive.
	Train(ctx context.Context, symbol string) (*domain.TrainingReport, error)
}

// Predictor produces a single next-step close forecast for one symbol.
type Predictor interface {
	// Predict loads the current model and infers the next close.
	// Fails with ErrModelNotFound, ErrNoData or ErrNoFeatures.
	Predict(ctx context.Context, symbol string) (*domain.Prediction, error)
}
