// Package linear implements batch gradient-descent logistic regression.
//
// The package is the numeric core: the logistic link (Sigmoid), the
// regularized cross-entropy cost (Cost), its analytic gradient (Gradient),
// the gradient-descent driver (Trainer, GradientDescent) and the one-vs-all
// multi-class wrapper (TrainOneVsAll).
//
// All functions take a design matrix X whose first column is the constant
// bias term 1, a label vector y aligned with the rows of X, and a parameter
// vector theta with one weight per column of X. The bias weight theta[0] is
// never regularized.
//
//	X := mat.NewDense(4, 2, []float64{1, 0, 1, 1, 1, 2, 1, 3})
//	y := mat.NewVecDense(4, []float64{0, 0, 1, 1})
//	theta, history, err := linear.GradientDescent(X, y, mat.NewVecDense(2, nil), 0.1, 1000, 0)
package linear
