package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoForecaster/internal/domain"
)

// makeBars builds ascending one-minute bars with the given closes.
func makeBars(closes []float64) []*domain.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]*domain.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = &domain.PriceBar{
			Symbol:    "BTCUSDT",
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Close:     c,
		}
	}
	return bars
}

// unitSteps returns n closes 100, 101, 102, ...
func unitSteps(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

func TestBuild_ShortHistoryIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{name: "no bars", n: 0},
		{name: "single bar", n: 1},
		{name: "one below minimum", n: MinBarsForTable - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, target := Build(makeBars(unitSteps(tt.n)))
			assert.Empty(t, table.Rows)
			assert.Empty(t, target)
		})
	}
}

func TestBuild_MinimumHistoryYieldsOneRow(t *testing.T) {
	table, target := Build(makeBars(unitSteps(MinBarsForTable)))
	require.Len(t, table.Rows, 1)
	require.Len(t, target, 1)
}

func TestBuild_AlignedAndFullyDefined(t *testing.T) {
	closes := unitSteps(20) // 100..119
	table, target := Build(makeBars(closes))

	// Rows survive for indices 15..18: the 15-step lookback eats the head,
	// the one-step-ahead target eats the tail.
	require.Len(t, table.Rows, 4)
	require.Len(t, target, 4)
	require.Len(t, table.Times, 4)

	for _, row := range table.Rows {
		require.Len(t, row, len(Columns))
		for c, v := range row {
			assert.False(t, math.IsNaN(v), "undefined cell in column %s", Columns[c])
		}
	}
	for _, y := range target {
		assert.False(t, math.IsNaN(y))
	}

	// Chronological row order.
	for i := 1; i < len(table.Times); i++ {
		assert.True(t, table.Times[i-1].Before(table.Times[i]))
	}

	// First surviving row is input index 15: ret_1 = 115/114 - 1.
	assert.Equal(t, 115.0/114.0-1, table.Rows[0][0])
	// Close column of the first surviving row.
	assert.Equal(t, 115.0, table.Rows[0][len(Columns)-1])

	// The final row's target is the true last close; the shift never pairs a
	// row with an out-of-range lookahead index.
	assert.Equal(t, closes[19], target[len(target)-1])
	assert.Equal(t, closes[18], table.Rows[len(table.Rows)-1][len(Columns)-1])
}

func TestPctChange_FirstDefinedValue(t *testing.T) {
	out := pctChange(unitSteps(20), 1)
	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, 101.0/100.0-1, out[1])

	out5 := pctChange(unitSteps(20), 5)
	for i := 0; i < 5; i++ {
		assert.True(t, math.IsNaN(out5[i]))
	}
	assert.Equal(t, 105.0/100.0-1, out5[5])
}

func TestEMA_SeededByFirstValue(t *testing.T) {
	constant := []float64{42, 42, 42, 42, 42}
	for _, v := range ema(constant, 5) {
		assert.Equal(t, 42.0, v)
	}

	// Spot-check the recursion against a manual computation.
	closes := []float64{1, 2, 3}
	alpha := 2.0 / 6.0
	out := ema(closes, 5)
	assert.Equal(t, 1.0, out[0])
	assert.InDelta(t, alpha*2+(1-alpha)*1, out[1], 1e-12)
	assert.InDelta(t, alpha*3+(1-alpha)*out[1], out[2], 1e-12)
}

func TestRollingStd_SampleDeviation(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = float64(i + 1) // 1..15
	}
	out := rollingStd(closes, 15)
	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(out[i]))
	}
	// Sample std of 1..15 is sqrt(280/14) = sqrt(20).
	assert.InDelta(t, math.Sqrt(20), out[14], 1e-12)
}

func TestRollingMean_WindowValues(t *testing.T) {
	out := rollingMean(unitSteps(10), 5)
	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(out[i]))
	}
	assert.Equal(t, 102.0, out[4]) // mean of 100..104
	assert.Equal(t, 107.0, out[9]) // mean of 105..109
}

func TestBuild_SortsWithoutMutatingInput(t *testing.T) {
	bars := makeBars(unitSteps(20))
	// Reverse into descending order.
	shuffled := make([]*domain.PriceBar, len(bars))
	for i := range bars {
		shuffled[i] = bars[len(bars)-1-i]
	}
	firstBefore := shuffled[0]

	table, target := Build(shuffled)
	sortedTable, sortedTarget := Build(bars)

	assert.Equal(t, sortedTable.Rows, table.Rows)
	assert.Equal(t, sortedTarget, target)
	// The caller's slice order is untouched.
	assert.Same(t, firstBefore, shuffled[0])
}

func TestLatest(t *testing.T) {
	t.Run("history below minimum", func(t *testing.T) {
		_, _, ok := Latest(makeBars(unitSteps(MinBarsForLatest - 1)))
		assert.False(t, ok)
	})

	t.Run("minimum history", func(t *testing.T) {
		bars := makeBars(unitSteps(MinBarsForLatest))
		row, ts, ok := Latest(bars)
		require.True(t, ok)
		require.Len(t, row, len(Columns))
		for c, v := range row {
			assert.False(t, math.IsNaN(v), "undefined cell in column %s", Columns[c])
		}
		assert.Equal(t, bars[len(bars)-1].Close, row[len(Columns)-1])
		assert.Equal(t, bars[len(bars)-1].Timestamp, ts)
	})

	t.Run("newest bar included", func(t *testing.T) {
		bars := makeBars(unitSteps(20))
		row, _, ok := Latest(bars)
		require.True(t, ok)
		// The inference row sees the very latest close, not the
		// second-newest one.
		assert.Equal(t, 119.0, row[len(Columns)-1])
	})
}
