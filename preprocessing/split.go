package preprocessing

import (
	"math"
	"math/rand"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// TrainTestSplit shuffles the indices 0..n-1 with seed and returns the
// first round(n*testFraction) of them as the test set. Both slices are
// returned in ascending order so row order inside each split is stable.
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, errors.NewValidationError("n", "need at least 2 samples to split", n)
	}
	if math.IsNaN(testFraction) || testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testFraction)
	}

	nTest := int(math.Round(float64(n) * testFraction))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	isTest := make([]bool, n)
	for _, idx := range perm[:nTest] {
		isTest[idx] = true
	}

	train = make([]int, 0, n-nTest)
	test = make([]int, 0, nTest)
	for i := 0; i < n; i++ {
		if isTest[i] {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}
	return train, test, nil
}

// SelectRows copies the given rows of X into a new matrix.
func SelectRows(X mat.Matrix, rows []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(r, j))
		}
	}
	return out
}

// SelectVec copies the given entries of v into a new vector.
func SelectVec(v mat.Vector, idx []int) *mat.VecDense {
	out := mat.NewVecDense(len(idx), nil)
	for i, r := range idx {
		out.SetVec(i, v.AtVec(r))
	}
	return out
}

// SelectStrings returns the given entries of s.
func SelectStrings(s []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, r := range idx {
		out[i] = s[r]
	}
	return out
}
