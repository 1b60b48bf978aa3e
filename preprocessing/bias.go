package preprocessing

import "gonum.org/v1/gonum/mat"

// AddBias returns a copy of X with a leading column of ones.
func AddBias(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			out.Set(i, j+1, X.At(i, j))
		}
	}
	return out
}
