package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticData builds a nonlinear single-feature regression problem.
func syntheticData(n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		x[i] = []float64{t, math.Sin(8 * t)}
		y[i] = 3*t + math.Sin(8*t)
	}
	return x, y
}

func TestGradientBoosting_FitQuality(t *testing.T) {
	x, y := syntheticData(300)
	model := New(Config{})
	require.NoError(t, model.Fit(x, y))

	preds := model.PredictBatch(x)
	mae, err := MeanAbsoluteError(y, preds)
	require.NoError(t, err)
	// Boosted depth-3 trees should fit this smooth target closely in-sample.
	assert.Less(t, mae, 0.1)
}

func TestGradientBoosting_StepFunction(t *testing.T) {
	n := 200
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = []float64{float64(i)}
		if i < 100 {
			y[i] = 1
		} else {
			y[i] = 5
		}
	}

	model := New(Config{Trees: 50})
	require.NoError(t, model.Fit(x, y))

	assert.InDelta(t, 1.0, model.Predict([]float64{10}), 0.05)
	assert.InDelta(t, 5.0, model.Predict([]float64{150}), 0.05)
}

func TestGradientBoosting_Determinism(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "defaults", cfg: Config{}},
		{name: "subsampled with fixed seed", cfg: Config{Subsample: 0.8, Seed: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := syntheticData(250)

			first := New(tt.cfg)
			require.NoError(t, first.Fit(x, y))
			second := New(tt.cfg)
			require.NoError(t, second.Fit(x, y))

			// Identical input and seed must yield an identical model.
			assert.Equal(t, first.Base, second.Base)
			assert.Equal(t, first.PredictBatch(x), second.PredictBatch(x))
		})
	}
}

func TestGradientBoosting_FitErrors(t *testing.T) {
	tests := []struct {
		name string
		x    [][]float64
		y    []float64
	}{
		{name: "empty matrix", x: nil, y: nil},
		{name: "length mismatch", x: [][]float64{{1}, {2}}, y: []float64{1}},
		{name: "ragged rows", x: [][]float64{{1, 2}, {3}}, y: []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(Config{})
			assert.Error(t, model.Fit(tt.x, tt.y))
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	model := New(Config{})
	assert.Equal(t, DefaultTrees, model.Cfg.Trees)
	assert.Equal(t, DefaultLearningRate, model.Cfg.LearningRate)
	assert.Equal(t, DefaultMaxDepth, model.Cfg.MaxDepth)
	assert.Equal(t, int64(DefaultSeed), model.Cfg.Seed)
	assert.Equal(t, DefaultSubsample, model.Cfg.Subsample)
}

func TestFitTree_ConstantTargetIsLeaf(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{2, 2, 2, 2}
	idx := []int{0, 1, 2, 3}

	node := fitTree(x, y, idx, 0, treeConfig{maxDepth: 3, minSamplesSplit: 2, minSamplesLeaf: 1})
	assert.True(t, node.IsLeaf())
	assert.Equal(t, 2.0, node.Value)
}
