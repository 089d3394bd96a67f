package domain

import "time"

// ModelMetric is one append-only record of a training run's evaluation.
type ModelMetric struct {
	ID           int64     `json:"-"`
	ModelVersion string    `json:"model_version"`
	TrainEndTS   time.Time `json:"train_end_ts"` // Timestamp of the newest bar seen during training
	MAE          float64   `json:"mae"`
	RMSE         float64   `json:"rmse"`
	CreatedAt    time.Time `json:"created_at"`
}

// TrainingReport summarises one successful training run.
type TrainingReport struct {
	Version      string  `json:"version"`
	MAE          float64 `json:"mae"`
	RMSE         float64 `json:"rmse"`
	ArtifactPath string  `json:"model_path"`
	Rows         int     `json:"n_rows"`     // Raw bars used as input
	Features     int     `json:"n_features"` // Feature columns in the table
}

// Prediction is a single next-step close forecast.
type Prediction struct {
	Symbol             string    `json:"symbol"`
	PredictedNextClose float64   `json:"predicted_next_close"`
	LastClose          float64   `json:"last_close"`
	Delta              float64   `json:"delta"`
	DeltaPct           float64   `json:"delta_pct"`
	ModelVersion       string    `json:"model_version"`
	LastTS             time.Time `json:"last_ts"`
	PredictedAt        time.Time `json:"predicted_at"`
}
