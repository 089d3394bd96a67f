package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cryptoForecaster/internal/ports"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (optional; kline endpoints are public)
	APIKey    string
	SecretKey string

	// Ingestion Parameters
	Symbols     []string // Symbols ingested and retrained on schedule
	Interval    string   // Kline interval (e.g., "1m")
	IngestLimit int      // Candles fetched per ingestion cycle

	// Training Parameters
	TrainLookback int // Most recent bars read as raw training input
	MinTrainRows  int // Minimum feature rows required to train

	// Model Hyperparameters
	ModelTrees        int
	ModelLearningRate float64
	ModelMaxDepth     int
	ModelSeed         int64
	ModelSubsample    float64

	// Scheduling
	EnableScheduler bool
	IngestEvery     time.Duration
	RetrainEvery    time.Duration

	// Storage
	DBPath   string
	ModelDir string

	// Logging
	LogLevel   string
	LogConsole bool
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Binance API (no validation: only public endpoints are used)
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")

	// Ingestion Parameters
	symbols := getEnv("INGEST_SYMBOLS", "BTCUSDT")
	for _, s := range strings.Split(symbols, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			cfg.Symbols = append(cfg.Symbols, strings.ToUpper(s))
		}
	}
	if len(cfg.Symbols) == 0 {
		errs = append(errs, "INGEST_SYMBOLS must name at least one symbol")
	}

	cfg.Interval = getEnv("INGEST_INTERVAL", "1m")
	if cfg.Interval == "" {
		errs = append(errs, "INGEST_INTERVAL must be set")
	}

	cfg.IngestLimit = getEnvAsInt("INGEST_LIMIT", 300)
	if cfg.IngestLimit <= 0 || cfg.IngestLimit > 1000 {
		errs = append(errs, "INGEST_LIMIT must be between 1 and 1000")
	}

	// Training Parameters
	cfg.TrainLookback = getEnvAsInt("TRAIN_LOOKBACK", 5000)
	if cfg.TrainLookback <= 0 {
		errs = append(errs, "TRAIN_LOOKBACK must be positive")
	}
	cfg.MinTrainRows = getEnvAsInt("MIN_TRAIN_ROWS", 200)
	if cfg.MinTrainRows <= 0 {
		errs = append(errs, "MIN_TRAIN_ROWS must be positive")
	}

	// Model Hyperparameters (defaults match the regression package)
	cfg.ModelTrees = getEnvAsInt("MODEL_TREES", 100)
	cfg.ModelLearningRate = getEnvAsFloat("MODEL_LEARNING_RATE", 0.1)
	cfg.ModelMaxDepth = getEnvAsInt("MODEL_MAX_DEPTH", 3)
	cfg.ModelSeed = int64(getEnvAsInt("MODEL_SEED", 42))
	cfg.ModelSubsample = getEnvAsFloat("MODEL_SUBSAMPLE", 1.0)

	if cfg.ModelTrees <= 0 || cfg.ModelMaxDepth <= 0 {
		errs = append(errs, "MODEL_TREES and MODEL_MAX_DEPTH must be positive")
	}
	if cfg.ModelLearningRate <= 0 || cfg.ModelLearningRate > 1 {
		errs = append(errs, "MODEL_LEARNING_RATE must be in (0, 1]")
	}
	if cfg.ModelSubsample <= 0 || cfg.ModelSubsample > 1 {
		errs = append(errs, "MODEL_SUBSAMPLE must be in (0, 1]")
	}

	// Scheduling
	cfg.EnableScheduler = getEnvAsBool("ENABLE_SCHEDULER", true)

	ingestEvery := getEnvAsInt("INGEST_EVERY_SECONDS", 60)
	if ingestEvery <= 0 {
		errs = append(errs, "INGEST_EVERY_SECONDS must be positive")
	}
	cfg.IngestEvery = time.Duration(ingestEvery) * time.Second

	retrainEvery := getEnvAsInt("RETRAIN_EVERY_MINUTES", 360)
	if retrainEvery <= 0 {
		errs = append(errs, "RETRAIN_EVERY_MINUTES must be positive")
	}
	cfg.RetrainEvery = time.Duration(retrainEvery) * time.Minute

	// Storage
	cfg.DBPath = getEnv("DB_PATH", "./data/forecaster.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	cfg.ModelDir = getEnv("MODEL_DIR", "./data/models")
	if cfg.ModelDir == "" {
		errs = append(errs, "MODEL_DIR must be set")
	}

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	cfg.LogConsole = getEnvAsBool("LOG_CONSOLE", true)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrConfigurationError, strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
