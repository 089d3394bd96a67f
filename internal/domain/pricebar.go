package domain

import "time"

// PriceBar represents a single OHLCV observation, keyed by (Symbol, Timestamp).
type PriceBar struct {
	Symbol    string    // Trading symbol (e.g., "BTCUSDT")
	Timestamp time.Time // Canonical instant of the bar (interval close time, UTC)
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Trading volume
}
