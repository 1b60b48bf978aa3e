package linear

import (
	"math"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Epsilon bounds every probability produced by Sigmoid to
// [Epsilon, 1-Epsilon], which keeps log(h) and log(1-h) finite in Cost.
const Epsilon = 1e-12

// Sigmoid returns 1/(1+e^-z) clamped to [Epsilon, 1-Epsilon].
// It never overflows: e^-|z| is the only exponential evaluated.
func Sigmoid(z float64) float64 {
	var p float64
	if z >= 0 {
		p = 1.0 / (1.0 + math.Exp(-z))
	} else {
		e := math.Exp(z)
		p = e / (1.0 + e)
	}
	return errors.ClipValue(p, Epsilon, 1-Epsilon)
}

// SigmoidVec applies Sigmoid elementwise to z and stores the result in dst.
// If dst is nil a new vector is allocated. dst may alias z.
func SigmoidVec(dst *mat.VecDense, z mat.Vector) *mat.VecDense {
	n := z.Len()
	if dst == nil {
		dst = mat.NewVecDense(n, nil)
	} else if dst.Len() != n {
		panic(mat.ErrShape)
	}
	for i := 0; i < n; i++ {
		dst.SetVec(i, Sigmoid(z.AtVec(i)))
	}
	return dst
}
