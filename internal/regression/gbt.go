package regression

import (
	"fmt"
	"math/rand"
	"sort"
)

// Default hyperparameters, matching the conventional gradient-boosting
// defaults the evaluation metrics were calibrated against.
const (
	DefaultTrees        = 100
	DefaultLearningRate = 0.1
	DefaultMaxDepth     = 3
	DefaultMinSplit     = 2
	DefaultSeed         = 42
	DefaultSubsample    = 1.0
)

// Config holds the hyperparameters for a gradient-boosted ensemble.
type Config struct {
	Trees        int     // Number of boosting rounds
	LearningRate float64 // Shrinkage applied to each tree's contribution
	MaxDepth     int     // Depth limit per tree
	MinSplit     int     // Minimum samples required to split a node
	Seed         int64   // Seed for row subsampling; fit is deterministic for a fixed seed
	Subsample    float64 // Fraction of rows drawn (without replacement) per round, (0,1]
}

// withDefaults fills zero-valued fields with the package defaults.
func (c Config) withDefaults() Config {
	if c.Trees <= 0 {
		c.Trees = DefaultTrees
	}
	if c.LearningRate <= 0 {
		c.LearningRate = DefaultLearningRate
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MinSplit <= 0 {
		c.MinSplit = DefaultMinSplit
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Subsample <= 0 || c.Subsample > 1 {
		c.Subsample = DefaultSubsample
	}
	return c
}

// GradientBoosting is a least-squares gradient-boosted regression tree
// ensemble. Fields are exported so a fitted model survives gob encoding.
type GradientBoosting struct {
	Cfg   Config
	Base  float64 // Initial prediction: mean of the training targets
	Trees []*Node
}

// New creates an unfitted ensemble with the given hyperparameters.
// Zero-valued fields fall back to the package defaults.
func New(cfg Config) *GradientBoosting {
	return &GradientBoosting{Cfg: cfg.withDefaults()}
}

// Fit trains the ensemble on the feature matrix x and target vector y.
// Rows of x must all have the same width. Training twice on identical input
// with the same seed produces an identical model.
func (g *GradientBoosting) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("cannot fit on an empty feature matrix")
	}
	if len(x) != len(y) {
		return fmt.Errorf("feature matrix has %d rows but target has %d", len(x), len(y))
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("feature row %d has width %d, expected %d", i, len(row), width)
		}
	}

	n := len(x)
	g.Base = mean(y)
	g.Trees = make([]*Node, 0, g.Cfg.Trees)

	// Current ensemble prediction per row, updated after every round.
	current := make([]float64, n)
	for i := range current {
		current[i] = g.Base
	}
	residual := make([]float64, n)

	rng := rand.New(rand.NewSource(g.Cfg.Seed))
	tcfg := treeConfig{maxDepth: g.Cfg.MaxDepth, minSamplesSplit: g.Cfg.MinSplit, minSamplesLeaf: 1}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	for round := 0; round < g.Cfg.Trees; round++ {
		for i := range residual {
			residual[i] = y[i] - current[i]
		}

		idx := all
		if g.Cfg.Subsample < 1 {
			idx = sampleRows(rng, n, g.Cfg.Subsample)
		}

		tree := fitTree(x, residual, idx, 0, tcfg)
		g.Trees = append(g.Trees, tree)

		for i := range current {
			current[i] += g.Cfg.LearningRate * tree.predict(x[i])
		}
	}
	return nil
}

// Predict returns the ensemble forecast for a single feature row.
func (g *GradientBoosting) Predict(x []float64) float64 {
	yhat := g.Base
	for _, tree := range g.Trees {
		yhat += g.Cfg.LearningRate * tree.predict(x)
	}
	return yhat
}

// PredictBatch returns forecasts for every row of x.
func (g *GradientBoosting) PredictBatch(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = g.Predict(row)
	}
	return out
}

// sampleRows draws a sorted sample of ceil(n*fraction) distinct row indices.
func sampleRows(rng *rand.Rand, n int, fraction float64) []int {
	k := int(float64(n)*fraction + 0.5)
	if k < 1 {
		k = 1
	}
	sample := make([]int, k)
	copy(sample, rng.Perm(n))
	// Keep chronological order inside the sample so splits stay stable.
	sort.Ints(sample)
	return sample
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
