package linear

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/gdlogit/core/parallel"
	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultParallelThreshold is the number of rows above which the per-example
// sums of Cost and Gradient are split across CPU cores.
const DefaultParallelThreshold = 1000

// Cost returns the regularized cross-entropy
//
//	J = -(1/m) Σ [y log h + (1-y) log(1-h)] + λ/(2m) Σ_{j>=1} θ_j²
//
// with h = Sigmoid(θ·x). The bias weight θ_0 is not penalized.
func Cost(X mat.Matrix, y, theta mat.Vector, lambda float64) (float64, error) {
	if err := validateProblem("Cost", X, y, theta, lambda); err != nil {
		return 0, err
	}
	cost, _ := evaluate(X, y, theta, lambda, DefaultParallelThreshold, false)
	return cost, nil
}

// Gradient returns ∂J/∂θ for the cost computed by Cost:
//
//	g_j = (1/m) Σ (h - y) x_j + (λ/m) θ_j   (no penalty term for j = 0)
func Gradient(X mat.Matrix, y, theta mat.Vector, lambda float64) (*mat.VecDense, error) {
	if err := validateProblem("Gradient", X, y, theta, lambda); err != nil {
		return nil, err
	}
	_, grad := evaluate(X, y, theta, lambda, DefaultParallelThreshold, true)
	return grad, nil
}

// evaluate computes the cost and, if wantGrad is set, the gradient in one
// pass over the rows. Inputs must already be validated.
func evaluate(X mat.Matrix, y, theta mat.Vector, lambda float64, threshold int, wantGrad bool) (float64, *mat.VecDense) {
	m, cols := X.Dims()
	w := vecData(theta)

	dim := 1
	if wantGrad {
		dim += cols
	}

	acc := parallel.Reduce(m, threshold, dim, func(start, end int, acc []float64) {
		buf := make([]float64, cols)
		for i := start; i < end; i++ {
			row := rowData(X, i, buf)
			h := Sigmoid(floats.Dot(row, w))
			yi := y.AtVec(i)
			// Sigmoid is clamped, so both logs are finite.
			acc[0] -= yi*math.Log(h) + (1-yi)*math.Log(1-h)
			if wantGrad {
				floats.AddScaled(acc[1:], h-yi, row)
			}
		}
	})

	fm := float64(m)
	var penalty float64
	for j := 1; j < cols; j++ {
		penalty += w[j] * w[j]
	}
	cost := acc[0]/fm + lambda/(2*fm)*penalty

	if !wantGrad {
		return cost, nil
	}

	grad := mat.NewVecDense(cols, nil)
	for j := 0; j < cols; j++ {
		g := acc[1+j] / fm
		if j > 0 {
			g += lambda / fm * w[j]
		}
		grad.SetVec(j, g)
	}
	return cost, grad
}

// validateProblem checks the shape, finiteness and label contract shared by
// Cost, Gradient and the training driver.
func validateProblem(op string, X mat.Matrix, y, theta mat.Vector, lambda float64) error {
	if X == nil || y == nil || theta == nil {
		return errors.NewValueError(op, "X, y and theta must not be nil")
	}
	m, cols := X.Dims()
	if m == 0 || cols == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if y.Len() != m {
		return errors.NewDimensionError(op, m, y.Len(), 0)
	}
	if theta.Len() != cols {
		return errors.NewDimensionError(op, cols, theta.Len(), 1)
	}
	if math.IsNaN(lambda) || lambda < 0 {
		return errors.NewValidationError("lambda", "must be non-negative", lambda)
	}
	if err := errors.CheckMatrix(op+": X", X, m, cols, 0); err != nil {
		return err
	}
	if err := errors.CheckVector(op+": y", y, m, 0); err != nil {
		return err
	}
	if err := errors.CheckVector(op+": theta", theta, cols, 0); err != nil {
		return err
	}
	for i := 0; i < m; i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValidationError("y", fmt.Sprintf("binary labels must be 0 or 1 (row %d)", i), v)
		}
	}
	return nil
}

// vecData returns the elements of v as a contiguous slice, without copying
// when v is a unit-stride *mat.VecDense.
func vecData(v mat.Vector) []float64 {
	if vd, ok := v.(*mat.VecDense); ok {
		raw := vd.RawVector()
		if raw.Inc == 1 {
			return raw.Data[:vd.Len()]
		}
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// rowData returns row i of X, using buf as scratch space when X does not
// expose its backing storage.
func rowData(X mat.Matrix, i int, buf []float64) []float64 {
	if rv, ok := X.(mat.RawRowViewer); ok {
		return rv.RawRowView(i)
	}
	return mat.Row(buf, i, X)
}
