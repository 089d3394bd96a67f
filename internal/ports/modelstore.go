package ports

import (
	"context"

	"cryptoForecaster/internal/regression"
)

// ModelArtifact bundles a fitted regressor with its metadata. The version is
// a sortable string derived from the moment training completed.
type ModelArtifact struct {
	Version  string
	Features []string // Feature column names, in training order
	Model    *regression.GradientBoosting
}

// ModelInfo describes the current state of the artifact store.
type ModelInfo struct {
	Dir     string
	Path    string // Canonical path of the current artifact
	Exists  bool
	Listing []string // All artifact files present, sorted
}

// ModelStore defines the artifact boundary between the Trainer (writer) and
// the Predictor (reader). The current artifact is a single slot: writes are
// split into staging an immutable versioned file and promoting it into the
// slot, so the writer can finish all other fallible work between the two
// steps without ever exposing a half-committed model. Promotion must never
// leave a torn artifact visible to readers.
type ModelStore interface {
	// Stage persists the artifact as an immutable versioned file without
	// touching the current model slot. Returns the staged file path.
	Stage(ctx context.Context, artifact *ModelArtifact) (string, error)
	// Promote makes a previously staged version the current model and
	// returns the canonical artifact path.
	// Fails with ErrModelNotFound when the version was never staged.
	Promote(ctx context.Context, version string) (string, error)
	// Load retrieves the current artifact.
	// Fails with ErrModelNotFound when nothing has been promoted yet.
	Load(ctx context.Context) (*ModelArtifact, error)
	// Info reports the store location and the artifacts it holds.
	Info(ctx context.Context) (*ModelInfo, error)
}
