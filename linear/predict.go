package linear

import (
	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DecisionThreshold is the probability at or above which an example is
// assigned the positive class.
const DecisionThreshold = 0.5

// Probabilities returns Sigmoid(θ·x) for every row x of X.
func Probabilities(X mat.Matrix, theta mat.Vector) (*mat.VecDense, error) {
	if X == nil || theta == nil {
		return nil, errors.NewValueError("Probabilities", "X and theta must not be nil")
	}
	m, cols := X.Dims()
	if theta.Len() != cols {
		return nil, errors.NewDimensionError("Probabilities", cols, theta.Len(), 1)
	}
	w := vecData(theta)
	buf := make([]float64, cols)
	out := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		out.SetVec(i, Sigmoid(floats.Dot(rowData(X, i, buf), w)))
	}
	return out, nil
}

// PredictBinary returns 1 for rows whose probability is at least
// DecisionThreshold and 0 otherwise.
func PredictBinary(X mat.Matrix, theta mat.Vector) ([]int, error) {
	probs, err := Probabilities(X, theta)
	if err != nil {
		return nil, err
	}
	labels := make([]int, probs.Len())
	for i := range labels {
		if probs.AtVec(i) >= DecisionThreshold {
			labels[i] = 1
		}
	}
	return labels, nil
}
