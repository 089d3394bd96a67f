package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptoForecaster/config"
	"cryptoForecaster/internal/domain"
	"cryptoForecaster/internal/ports"
)

// PipelineService orchestrates the ingestion → train → predict pipeline.
// On-demand calls propagate typed errors to the caller; scheduled cycles log
// failures and continue, so one bad run never stops the periodic jobs.
type PipelineService struct {
	cfg       *config.Config
	logger    ports.Logger
	source    ports.MarketDataClient
	prices    ports.PriceRepository
	metrics   ports.MetricRepository
	trainer   ports.Trainer
	predictor ports.Predictor
}

// NewPipelineService creates a new application service instance.
func NewPipelineService(
	cfg *config.Config,
	logger ports.Logger,
	source ports.MarketDataClient,
	prices ports.PriceRepository,
	metrics ports.MetricRepository,
	trainer ports.Trainer,
	predictor ports.Predictor,
) (*PipelineService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || source == nil || prices == nil || metrics == nil || trainer == nil || predictor == nil {
		return nil, fmt.Errorf("missing required dependencies for PipelineService")
	}
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("configuration must name at least one symbol")
	}

	return &PipelineService{
		cfg:       cfg,
		logger:    logger,
		source:    source,
		prices:    prices,
		metrics:   metrics,
		trainer:   trainer,
		predictor: predictor,
	}, nil
}

// Ingest fetches the latest candles for a symbol and upserts them into the
// store. Re-ingesting overlapping ranges is safe: the storage uniqueness
// constraint skips duplicates. Returns the number of rows newly persisted.
func (s *PipelineService) Ingest(ctx context.Context, symbol string) (int, error) {
	bars, err := s.source.GetKlines(ctx, symbol, s.cfg.Interval, s.cfg.IngestLimit)
	if err != nil {
		return 0, fmt.Errorf("fetching candles for %s: %w", symbol, err)
	}

	inserted, err := s.prices.Upsert(ctx, bars)
	if err != nil {
		return 0, fmt.Errorf("persisting candles for %s: %w", symbol, err)
	}

	s.logger.Info(ctx, "Ingestion cycle completed", map[string]interface{}{
		"symbol": symbol, "fetched": len(bars), "inserted": inserted,
	})
	return inserted, nil
}

// Train runs one training cycle for the symbol.
func (s *PipelineService) Train(ctx context.Context, symbol string) (*domain.TrainingReport, error) {
	return s.trainer.Train(ctx, symbol)
}

// Predict produces a next-step close forecast for the symbol.
func (s *PipelineService) Predict(ctx context.Context, symbol string) (*domain.Prediction, error) {
	return s.predictor.Predict(ctx, symbol)
}

// Metrics returns the most recent training evaluations, newest first.
func (s *PipelineService) Metrics(ctx context.Context, limit int) ([]*domain.ModelMetric, error) {
	return s.metrics.ListMetrics(ctx, limit)
}

// Start runs the periodic ingestion and retraining loops until the context is
// cancelled or a shutdown signal arrives. At most one cycle of each job type
// runs at a time: both loops live on this single goroutine.
func (s *PipelineService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting pipeline service", map[string]interface{}{
		"symbols": s.cfg.Symbols, "ingestEvery": s.cfg.IngestEvery.String(), "retrainEvery": s.cfg.RetrainEvery.String(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown. The watcher also exits on context
	// cancellation so Start never leaks it.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	ingestTicker := time.NewTicker(s.cfg.IngestEvery)
	defer ingestTicker.Stop()
	retrainTicker := time.NewTicker(s.cfg.RetrainEvery)
	defer retrainTicker.Stop()

	// Prime the store before the first ticker fires.
	s.runIngestCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Pipeline service stopping")
			return nil
		case <-ingestTicker.C:
			s.runIngestCycle(ctx)
		case <-retrainTicker.C:
			s.runRetrainCycle(ctx)
		}
	}
}

// runIngestCycle ingests every configured symbol. Failures are logged and
// swallowed: a transient outage costs one cycle's rows, nothing more.
func (s *PipelineService) runIngestCycle(ctx context.Context) {
	for _, symbol := range s.cfg.Symbols {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.Ingest(ctx, symbol); err != nil {
			s.logger.Error(ctx, err, "Scheduled ingestion failed", map[string]interface{}{"symbol": symbol})
		}
	}
}

// runRetrainCycle retrains every configured symbol, same failure policy as
// ingestion.
func (s *PipelineService) runRetrainCycle(ctx context.Context) {
	for _, symbol := range s.cfg.Symbols {
		if ctx.Err() != nil {
			return
		}
		report, err := s.Train(ctx, symbol)
		if err != nil {
			s.logger.Error(ctx, err, "Scheduled retraining failed", map[string]interface{}{"symbol": symbol})
			continue
		}
		s.logger.Info(ctx, "Scheduled retraining completed", map[string]interface{}{
			"symbol": symbol, "version": report.Version, "mae": report.MAE, "rmse": report.RMSE,
		})
	}
}
