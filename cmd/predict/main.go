// Command predict produces one on-demand next-close forecast for a symbol and
// prints it as JSON.
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
	"cryptoForecaster/internal/predictor"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "symbol to predict")
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

	pr, err := predictor.New(predictor.Config{Lookback: cfg.TrainLookback}, appLogger, repo, store)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize predictor: %v", err)
	}

	prediction, err := pr.Predict(ctx, *symbol)
	if err != nil {
		appLogger.Error(ctx, err, "Prediction failed", map[string]interface{}{"symbol": *symbol})
		os.Exit(1)
	}

	out, err := json.MarshalIndent(prediction, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal prediction: %v", err)
	}
	fmt.Println(string(out))
}
