// Package gdlogit provides logistic-regression classifiers trained by
// full-batch gradient descent, for Go services and command line tools.
//
// The numeric core lives in package linear: a numerically stable sigmoid,
// the L2-regularized cross-entropy cost and its gradient, a fixed-step
// gradient-descent driver that records one cost per iteration, and a
// one-vs-all wrapper that trains K binary classifiers concurrently.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gdlogit/linear"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    // Column 0 is the bias term.
//	    X := mat.NewDense(4, 2, []float64{1, 0, 1, 1, 1, 2, 1, 3})
//	    y := mat.NewVecDense(4, []float64{0, 0, 1, 1})
//
//	    theta, history, err := linear.GradientDescent(X, y, mat.NewVecDense(2, nil), 0.1, 1000, 0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(theta.RawVector().Data, history[len(history)-1])
//	}
//
// # Packages
//
//   - linear: sigmoid, cost, gradient, gradient descent, one-vs-all
//   - sklearn/linear_model: LogisticRegression with a scikit-learn style API
//   - preprocessing: bias column, train/test split, StandardScaler, CountVectorizer
//   - datasets: delimited numeric files, SMS collections, Gaussian blobs
//   - metrics: accuracy, precision, recall, F1, confusion matrix
//   - report: cost-history plots and top weighted tokens
//   - core/model: fitted state and gob persistence
//   - core/parallel: deterministic chunked reductions
//   - pkg/errors, pkg/log, pkg/telemetry: errors, structured logging, Prometheus metrics
//
// # Command line
//
// cmd/gdlogit trains on synthetic blobs, 2D data files, digits (one-vs-all)
// and SMS spam:
//
//	gdlogit spam -file SMSSpamCollection -iters 2000 -plot cost.png
//
// # Performance
//
// Cost and gradient evaluation split rows into per-CPU chunks above 1000
// rows and sum the partial results in chunk order, so repeated runs on the
// same machine are bit-for-bit identical.
package gdlogit
