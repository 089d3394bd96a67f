// Command backfill fetches historical candles for a symbol, upserts them into
// the price store, and optionally exports the fetched range to CSV.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"cryptoForecaster/config"
	"cryptoForecaster/internal/adapters/binanceclient"
	"cryptoForecaster/internal/adapters/logger"
	"cryptoForecaster/internal/adapters/sqlite"
	"cryptoForecaster/internal/utils"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "symbol to backfill")
	interval := flag.String("interval", "1m", "kline interval")
	days := flag.Int("days", 7, "how many days back to fetch")
	csvPath := flag.String("csv", "", "optional CSV export path")
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

	source, err := binanceclient.New(binanceclient.Config{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		Logger:    appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -*days)
	appLogger.Info(ctx, "Fetching candle range", map[string]interface{}{
		"symbol": *symbol, "interval": *interval, "start": start, "end": end,
	})

	bars, err := source.GetKlinesRange(ctx, *symbol, *interval, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching candle range")
		log.Fatalf("Error fetching candle range: %v", err)
	}

	inserted, err := repo.Upsert(ctx, bars)
	if err != nil {
		appLogger.Error(ctx, err, "Error upserting candles")
		log.Fatalf("Error upserting candles: %v", err)
	}
	appLogger.Info(ctx, "Backfill completed", map[string]interface{}{
		"fetched": len(bars), "inserted": inserted,
	})

	if *csvPath != "" {
		if err := utils.WriteBarsToCSV(bars, *csvPath); err != nil {
			appLogger.Error(ctx, err, "Error writing CSV")
			log.Fatalf("Error writing CSV: %v", err)
		}
		appLogger.Info(ctx, "CSV export written", map[string]interface{}{"path": *csvPath})
	}
}
