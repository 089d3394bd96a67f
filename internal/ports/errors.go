package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Market Data Source Errors
	ErrSourceUnavailable = errors.New("market data source is unavailable")
	ErrRateLimited       = errors.New("API rate limit exceeded")

	// Database Specific Errors
	ErrNoData       = errors.New("no price data stored for symbol")
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")

	// Pipeline Errors
	ErrInsufficientData = errors.New("not enough rows after feature engineering")
	ErrNoFeatures       = errors.New("no feature rows available for inference")
	ErrModelNotFound    = errors.New("no trained model artifact found")
)
