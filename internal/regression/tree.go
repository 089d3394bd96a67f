package regression

import (
	"math"
	"sort"
)

// Node is a single node of a fitted regression tree. Fields are exported so a
// fitted ensemble survives gob encoding when persisted as an artifact.
type Node struct {
	Feature   int     // Index of the feature this node splits on
	Threshold float64 // Split threshold: x[Feature] <= Threshold goes left
	Value     float64 // Prediction value (used when the node is a leaf)
	Left      *Node
	Right     *Node
}

// IsLeaf reports whether the node is a terminal prediction node.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// predict walks the tree for a single feature vector.
func (n *Node) predict(x []float64) float64 {
	node := n
	for !node.IsLeaf() {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// treeConfig holds the stopping criteria for a single tree fit.
type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

// fitTree builds a depth-limited regression tree minimising squared error on
// the rows referenced by idx. The split search is exhaustive and deterministic.
func fitTree(x [][]float64, y []float64, idx []int, depth int, cfg treeConfig) *Node {
	node := &Node{Feature: -1, Value: meanAt(y, idx)}

	if depth >= cfg.maxDepth || len(idx) < cfg.minSamplesSplit {
		return node
	}

	feature, threshold, ok := bestSplit(x, y, idx, cfg.minSamplesLeaf)
	if !ok {
		return node
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = fitTree(x, y, left, depth+1, cfg)
	node.Right = fitTree(x, y, right, depth+1, cfg)
	return node
}

// bestSplit scans every feature for the split that maximises the reduction in
// sum of squared errors. Returns ok=false when no split improves on the parent.
func bestSplit(x [][]float64, y []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	if n < 2 {
		return 0, 0, false
	}

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += y[i]
		totalSq += y[i] * y[i]
	}
	parentSSE := totalSq - totalSum*totalSum/float64(n)

	bestGain := 1e-12 // Require a strictly positive improvement
	numFeatures := len(x[idx[0]])
	order := make([]int, n)

	for f := 0; f < numFeatures; f++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return x[order[a]][f] < x[order[b]][f] })

		var leftSum, leftSq float64
		for pos := 0; pos < n-1; pos++ {
			i := order[pos]
			leftSum += y[i]
			leftSq += y[i] * y[i]

			// Cannot split between identical feature values.
			if x[order[pos]][f] == x[order[pos+1]][f] {
				continue
			}
			leftN := pos + 1
			rightN := n - leftN
			if leftN < minLeaf || rightN < minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			leftSSE := leftSq - leftSum*leftSum/float64(leftN)
			rightSSE := rightSq - rightSum*rightSum/float64(rightN)
			gain := parentSSE - leftSSE - rightSSE

			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (x[order[pos]][f] + x[order[pos+1]][f]) / 2
				ok = true
			}
		}
	}

	if ok && (math.IsNaN(threshold) || math.IsInf(threshold, 0)) {
		return 0, 0, false
	}
	return feature, threshold, ok
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
