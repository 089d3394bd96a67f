// Package features transforms a raw close-price series into a supervised
// learning table. Building is a pure function: no I/O, no hidden state, and
// the input slice is never mutated.
package features

import (
	"math"
	"sort"
	"time"

	"cryptoForecaster/internal/domain"
)

// Columns lists the derived feature columns in table order. The raw close is
// the final column so the latest observation is always part of the row.
var Columns = []string{
	"ret_1", "ret_5", "ret_15",
	"sma_5", "sma_15", "ema_5", "ema_15", "std_15",
	"close",
}

// Window sizes for the derived columns.
const (
	shortWindow = 5
	longWindow  = 15

	// MinBarsForTable is the smallest input that yields a non-empty table:
	// the 15-step lookback plus the one-step-ahead target consume 16 rows.
	MinBarsForTable = longWindow + 2
	// MinBarsForLatest is the smallest input that yields an inference row,
	// which needs no target.
	MinBarsForLatest = longWindow + 1
)

// Table is a dense feature matrix with per-row bar timestamps. Rows are in
// chronological order and contain no undefined cells.
type Table struct {
	Columns []string
	Rows    [][]float64
	Times   []time.Time // Bar timestamp of each row
}

// Build derives the feature table and the aligned target series (the close
// one step ahead of each row) from a sequence of price bars. Rows with any
// undefined value, in a feature column or the target, are dropped. The output
// table and target always have identical length; both are empty when fewer
// than MinBarsForTable bars are supplied.
func Build(bars []*domain.PriceBar) (*Table, []float64) {
	bars = sortedByTime(bars)
	n := len(bars)
	closes := closeSeries(bars)

	cols := columnMatrix(closes)
	target := make([]float64, n)
	for i := 0; i < n-1; i++ {
		target[i] = closes[i+1]
	}
	if n > 0 {
		target[n-1] = math.NaN()
	}

	table := &Table{Columns: Columns}
	targets := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		row := rowAt(cols, i)
		if hasNaN(row) || math.IsNaN(target[i]) {
			continue
		}
		table.Rows = append(table.Rows, row)
		table.Times = append(table.Times, bars[i].Timestamp)
		targets = append(targets, target[i])
	}
	return table, targets
}

// Latest derives the target-free feature row for the newest bar, for use at
// inference time. Returns ok=false when the history is too short to define
// every feature column.
func Latest(bars []*domain.PriceBar) (row []float64, ts time.Time, ok bool) {
	bars = sortedByTime(bars)
	n := len(bars)
	if n < MinBarsForLatest {
		return nil, time.Time{}, false
	}

	cols := columnMatrix(closeSeries(bars))
	row = rowAt(cols, n-1)
	if hasNaN(row) {
		return nil, time.Time{}, false
	}
	return row, bars[n-1].Timestamp, true
}

// columnMatrix computes every derived column over the close series, with NaN
// marking undefined cells.
func columnMatrix(closes []float64) [][]float64 {
	return [][]float64{
		pctChange(closes, 1),
		pctChange(closes, shortWindow),
		pctChange(closes, longWindow),
		rollingMean(closes, shortWindow),
		rollingMean(closes, longWindow),
		ema(closes, shortWindow),
		ema(closes, longWindow),
		rollingStd(closes, longWindow),
		closes,
	}
}

func rowAt(cols [][]float64, i int) []float64 {
	row := make([]float64, len(cols))
	for c := range cols {
		row[c] = cols[c][i]
	}
	return row
}

// pctChange returns the percentage-change series over a lookback of k steps:
// out[i] = closes[i]/closes[i-k] - 1, undefined (NaN) where i < k.
func pctChange(closes []float64, k int) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		if i < k {
			out[i] = math.NaN()
			continue
		}
		out[i] = closes[i]/closes[i-k] - 1
	}
	return out
}

// rollingMean returns the simple moving average over a trailing window,
// undefined (NaN) until the window is full.
func rollingMean(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	sum := 0.0
	for i := range closes {
		sum += closes[i]
		if i >= window {
			sum -= closes[i-window]
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}

// ema returns the exponential moving average over the given span, seeded by
// the first value and defined for every index. Span s maps to the smoothing
// factor alpha = 2/(s+1).
func ema(closes []float64, span int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}
	return out
}

// rollingStd returns the sample standard deviation over a trailing window,
// undefined (NaN) until the window is full.
func rollingStd(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += closes[j]
		}
		mean /= float64(window)

		sq := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := closes[j] - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(window-1))
	}
	return out
}

// sortedByTime returns the bars in ascending timestamp order without mutating
// the caller's slice. Idempotent when the input is already sorted.
func sortedByTime(bars []*domain.PriceBar) []*domain.PriceBar {
	sorted := make([]*domain.PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Timestamp.Before(sorted[b].Timestamp)
	})
	return sorted
}

func closeSeries(bars []*domain.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func hasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
