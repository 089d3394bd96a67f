package regression

import (
	"fmt"
	"math"
)

// MeanAbsoluteError returns the MAE between predictions and actuals.
func MeanAbsoluteError(actual, predicted []float64) (float64, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0, fmt.Errorf("mismatched series lengths: %d vs %d", len(actual), len(predicted))
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual)), nil
}

// RootMeanSquaredError returns the RMSE between predictions and actuals.
func RootMeanSquaredError(actual, predicted []float64) (float64, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0, fmt.Errorf("mismatched series lengths: %d vs %d", len(actual), len(predicted))
	}
	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual))), nil
}
