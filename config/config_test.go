package config

import (
	"errors"
	"testing"
	"time"

	"cryptoForecaster/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT"}, cfg.Symbols)
	assert.Equal(t, "1m", cfg.Interval)
	assert.Equal(t, 300, cfg.IngestLimit)
	assert.Equal(t, 5000, cfg.TrainLookback)
	assert.Equal(t, 200, cfg.MinTrainRows)
	assert.Equal(t, 100, cfg.ModelTrees)
	assert.Equal(t, time.Minute, cfg.IngestEvery)
	assert.Equal(t, 6*time.Hour, cfg.RetrainEvery)
}

func TestLoadConfig_SymbolParsing(t *testing.T) {
	t.Setenv("INGEST_SYMBOLS", " btcusdt, ethUSDT ,,solusdt ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}, cfg.Symbols)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("INGEST_LIMIT", "5000")
	t.Setenv("MODEL_LEARNING_RATE", "1.5")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrConfigurationError))
	assert.Contains(t, err.Error(), "INGEST_LIMIT")
	assert.Contains(t, err.Error(), "MODEL_LEARNING_RATE")
}

func TestLoadConfig_EmptySymbolList(t *testing.T) {
	t.Setenv("INGEST_SYMBOLS", " , ")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrConfigurationError))
}
