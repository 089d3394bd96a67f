// Package modelstore persists trained model artifacts on the local
// filesystem. Every version is written as an immutable file, and the
// canonical "current model" path is replaced with an atomic rename so a
// concurrent load never observes a torn artifact.
package modelstore

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cryptoForecaster/internal/ports"
)

const (
	currentName   = "model.gob"
	versionPrefix = "model_"
	versionSuffix = ".gob"
)

// Store implements the ports.ModelStore interface on a local directory.
type Store struct {
	dir    string
	logger ports.Logger
}

// Config holds configuration for the file-backed model store.
type Config struct {
	Dir    string
	Logger ports.Logger
}

// New creates a new file-backed model store, creating the directory if needed.
func New(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for model store")
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "./data/models" // Default path
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		err = fmt.Errorf("failed to create model directory '%s': %w", dir, err)
		cfg.Logger.Error(context.Background(), err, "Model store initialization failed")
		return nil, err
	}

	return &Store{dir: dir, logger: cfg.Logger}, nil
}

// CurrentPath returns the canonical path of the current model artifact.
func (s *Store) CurrentPath() string {
	return filepath.Join(s.dir, currentName)
}

// Stage persists the artifact as an immutable versioned file. The current
// model slot is not touched: readers keep loading whatever was promoted last.
func (s *Store) Stage(ctx context.Context, artifact *ports.ModelArtifact) (string, error) {
	if artifact == nil || artifact.Model == nil {
		return "", fmt.Errorf("cannot stage a nil model artifact")
	}
	if artifact.Version == "" {
		return "", fmt.Errorf("model artifact requires a version tag")
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(artifact); err != nil {
		return "", fmt.Errorf("failed to encode model artifact %s: %w", artifact.Version, err)
	}

	versioned := filepath.Join(s.dir, versionPrefix+artifact.Version+versionSuffix)
	if err := s.writeAtomic(versioned, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to write versioned artifact %s: %w", artifact.Version, err)
	}

	s.logger.Debug(ctx, "Model artifact staged", map[string]interface{}{
		"version": artifact.Version, "path": versioned, "bytes": buf.Len(),
	})
	return versioned, nil
}

// Promote swaps a previously staged version into the canonical slot.
// Returns the canonical artifact path.
func (s *Store) Promote(ctx context.Context, version string) (string, error) {
	if version == "" {
		return "", fmt.Errorf("cannot promote an empty version")
	}

	versioned := filepath.Join(s.dir, versionPrefix+version+versionSuffix)
	data, err := os.ReadFile(versioned)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("version %s was never staged: %w", version, ports.ErrModelNotFound)
		}
		return "", fmt.Errorf("failed to read staged artifact %s: %w", version, err)
	}

	current := s.CurrentPath()
	if err := s.writeAtomic(current, data); err != nil {
		return "", fmt.Errorf("failed to swap current artifact to %s: %w", version, err)
	}

	s.logger.Info(ctx, "Model artifact promoted", map[string]interface{}{
		"version": version, "path": current, "bytes": len(data),
	})
	return current, nil
}

// Save stages the artifact and immediately promotes it, for callers with no
// other work to finish between the two steps.
func (s *Store) Save(ctx context.Context, artifact *ports.ModelArtifact) (string, error) {
	if _, err := s.Stage(ctx, artifact); err != nil {
		return "", err
	}
	return s.Promote(ctx, artifact.Version)
}

// writeAtomic writes data to a temp file in the target directory and renames
// it over path. Rename within one filesystem is atomic, so readers see either
// the old file or the new one in full.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".model-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp artifact file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp artifact file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp artifact into place: %w", err)
	}
	return nil
}

// Load retrieves the current model artifact.
func (s *Store) Load(ctx context.Context) (*ports.ModelArtifact, error) {
	file, err := os.Open(s.CurrentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no artifact at %s: %w", s.CurrentPath(), ports.ErrModelNotFound)
		}
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer file.Close()

	artifact := &ports.ModelArtifact{}
	if err := gob.NewDecoder(file).Decode(artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	if artifact.Model == nil {
		return nil, fmt.Errorf("model artifact at %s holds no model: %w", s.CurrentPath(), ports.ErrModelNotFound)
	}

	s.logger.Debug(ctx, "Model artifact loaded", map[string]interface{}{"version": artifact.Version})
	return artifact, nil
}

// Info reports the store location and the artifact files it holds.
func (s *Store) Info(ctx context.Context) (*ports.ModelInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list model directory '%s': %w", s.dir, err)
	}

	listing := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		listing = append(listing, e.Name())
	}
	sort.Strings(listing)

	current := s.CurrentPath()
	_, err = os.Stat(current)
	exists := err == nil

	return &ports.ModelInfo{
		Dir:     s.dir,
		Path:    current,
		Exists:  exists,
		Listing: listing,
	}, nil
}
