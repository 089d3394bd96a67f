// Command train runs one on-demand training cycle for a symbol and prints
// the resulting report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"cryptoForecaster/config"
	"cryptoForecaster/internal/adapters/logger"
	"cryptoForecaster/internal/adapters/modelstore"
	"cryptoForecaster/internal/adapters/sqlite"
	"cryptoForecaster/internal/regression"
	"cryptoForecaster/internal/trainer"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "symbol to train on")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Console: cfg.LogConsole})
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer repo.Close()

	store, err := modelstore.New(modelstore.Config{Dir: cfg.ModelDir, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize model store: %v", err)
	}

	tr, err := trainer.New(trainer.Config{
		Lookback: cfg.TrainLookback,
		MinRows:  cfg.MinTrainRows,
		Model: regression.Config{
			Trees:        cfg.ModelTrees,
			LearningRate: cfg.ModelLearningRate,
			MaxDepth:     cfg.ModelMaxDepth,
			Seed:         cfg.ModelSeed,
			Subsample:    cfg.ModelSubsample,
		},
	}, appLogger, repo, repo, store)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize trainer: %v", err)
	}

	report, err := tr.Train(ctx, *symbol)
	if err != nil {
		appLogger.Error(ctx, err, "Training failed", map[string]interface{}{"symbol": *symbol})
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal report: %v", err)
	}
	fmt.Println(string(out))
}
