package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"cryptoForecaster/config"
	"cryptoForecaster/internal/adapters/binanceclient"
	"cryptoForecaster/internal/adapters/logger"
	"cryptoForecaster/internal/adapters/modelstore"
	"cryptoForecaster/internal/adapters/sqlite"
	"cryptoForecaster/internal/app"
	"cryptoForecaster/internal/predictor"
	"cryptoForecaster/internal/regression"
	"cryptoForecaster/internal/trainer"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Console: cfg.LogConsole})
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Initialize Model Store
	store, err := modelstore.New(modelstore.Config{Dir: cfg.ModelDir, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize model store: %v", err)
	}

	// 5. Initialize Market Data Client (Binance Adapter)
	source, err := binanceclient.New(binanceclient.Config{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		Logger:    appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 6. Initialize Trainer and Predictor
	modelCfg := regression.Config{
		Trees:        cfg.ModelTrees,
		LearningRate: cfg.ModelLearningRate,
		MaxDepth:     cfg.ModelMaxDepth,
		Seed:         cfg.ModelSeed,
		Subsample:    cfg.ModelSubsample,
	}
	tr, err := trainer.New(trainer.Config{
		Lookback: cfg.TrainLookback,
		MinRows:  cfg.MinTrainRows,
		Model:    modelCfg,
	}, appLogger, repo, repo, store)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize trainer: %v", err)
	}

	pr, err := predictor.New(predictor.Config{Lookback: cfg.TrainLookback}, appLogger, repo, store)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize predictor: %v", err)
	}

	// 7. Initialize Application Service
	pipeline, err := app.NewPipelineService(cfg, appLogger, source, repo, repo, tr, pr)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize pipeline service: %v", err)
	}

	if !cfg.EnableScheduler {
		appLogger.Info(context.Background(), "Scheduler disabled, exiting after wiring check")
		return
	}

	// 8. Start the Service
	if err := pipeline.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Pipeline service exited with error")
		log.Fatalf("FATAL: Pipeline service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
