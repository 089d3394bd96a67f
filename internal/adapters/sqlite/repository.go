package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cryptoForecaster/internal/domain"
	"cryptoForecaster/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.PriceRepository and ports.MetricRepository
// interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/forecaster.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		ts INTEGER NOT NULL, -- unix milliseconds, UTC
		open REAL DEFAULT NULL,
		high REAL DEFAULT NULL,
		low REAL DEFAULT NULL,
		close REAL NOT NULL,
		volume REAL DEFAULT NULL,
		UNIQUE (symbol, ts)
	);

	CREATE TABLE IF NOT EXISTS model_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model_version TEXT NOT NULL,
		train_end_ts INTEGER NOT NULL,
		mae REAL DEFAULT NULL,
		rmse REAL DEFAULT NULL,
		created_at INTEGER NOT NULL
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_prices_symbol_ts ON prices (symbol, ts);
	CREATE INDEX IF NOT EXISTS idx_model_metrics_created_at ON model_metrics (created_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- PriceRepository Implementation ---

// Upsert performs a set-insert of bars. Rows whose (symbol, ts) already exist
// are skipped via INSERT OR IGNORE, so a conflict on one row never aborts the
// others. Returns the number of rows newly persisted, not the batch size.
func (r *Repository) Upsert(ctx context.Context, bars []*domain.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin upsert transaction: %w: %w", ports.ErrQueryFailed, err)
	}
	defer tx.Rollback()

	const query = `
	INSERT OR IGNORE INTO prices (symbol, ts, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert statement: %w: %w", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, bar := range bars {
		result, err := stmt.ExecContext(ctx,
			bar.Symbol, bar.Timestamp.UTC().UnixMilli(), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert bar %s@%s: %w: %w", bar.Symbol, bar.Timestamp, ports.ErrQueryFailed, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected for bar %s@%s: %w", bar.Symbol, bar.Timestamp, err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upsert transaction: %w: %w", ports.ErrQueryFailed, err)
	}

	r.logger.Debug(ctx, "Bars upserted", map[string]interface{}{"submitted": len(bars), "inserted": inserted})
	return inserted, nil
}

// ReadLatest retrieves up to limit of the most recent bars for a symbol.
// The query runs descending for the LIMIT, then the result is reversed so the
// caller always receives ascending chronological order.
func (r *Repository) ReadLatest(ctx context.Context, symbol string, limit int) ([]*domain.PriceBar, error) {
	const query = `
	SELECT symbol, ts, COALESCE(open, 0), COALESCE(high, 0), COALESCE(low, 0), close, COALESCE(volume, 0)
	FROM prices
	WHERE symbol = ? ORDER BY ts DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest bars for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	bars := make([]*domain.PriceBar, 0, limit)
	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bar during ReadLatest: %w", err)
		}
		bars = append(bars, bar)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price rows: %w: %w", ports.ErrQueryFailed, err)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars stored for symbol %s: %w", symbol, ports.ErrNoData)
	}

	// Reverse into ascending chronological order.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

// --- MetricRepository Implementation ---

// AppendMetric records one training run's evaluation. The metric log is
// append-only; rows are never updated or deleted.
func (r *Repository) AppendMetric(ctx context.Context, metric *domain.ModelMetric) error {
	const query = `
	INSERT INTO model_metrics (model_version, train_end_ts, mae, rmse, created_at)
	VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		metric.ModelVersion, metric.TrainEndTS.UTC().UnixMilli(), metric.MAE, metric.RMSE, metric.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to append metric for version %s: %w: %w", metric.ModelVersion, ports.ErrQueryFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID for metric %s: %w", metric.ModelVersion, err)
	}
	metric.ID = id // Update the domain object with the ID
	r.logger.Debug(ctx, "Model metric appended", map[string]interface{}{"metricID": id, "version": metric.ModelVersion})
	return nil
}

// ListMetrics retrieves the most recent metric records, newest first.
func (r *Repository) ListMetrics(ctx context.Context, limit int) ([]*domain.ModelMetric, error) {
	const query = `
	SELECT id, model_version, train_end_ts, COALESCE(mae, 0), COALESCE(rmse, 0), created_at
	FROM model_metrics
	ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query model metrics: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	metrics := make([]*domain.ModelMetric, 0)
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric during ListMetrics: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric rows: %w: %w", ports.ErrQueryFailed, err)
	}
	return metrics, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanBar scans a row into a domain.PriceBar struct.
func scanBar(s scanner) (*domain.PriceBar, error) {
	b := &domain.PriceBar{}
	var ts int64
	err := s.Scan(&b.Symbol, &ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume)
	if err != nil {
		return nil, err
	}
	b.Timestamp = time.UnixMilli(ts).UTC()
	return b, nil
}

// scanMetric scans a row into a domain.ModelMetric struct.
func scanMetric(s scanner) (*domain.ModelMetric, error) {
	m := &domain.ModelMetric{}
	var trainEnd, createdAt int64
	err := s.Scan(&m.ID, &m.ModelVersion, &trainEnd, &m.MAE, &m.RMSE, &createdAt)
	if err != nil {
		return nil, err
	}
	m.TrainEndTS = time.UnixMilli(trainEnd).UTC()
	m.CreatedAt = time.UnixMilli(createdAt).UTC()
	return m, nil
}
