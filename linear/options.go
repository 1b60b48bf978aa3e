package linear

import "github.com/YuminosukeSato/gdlogit/pkg/log"

// Option is a function that configures a Trainer
type Option func(*Trainer)

// WithLearningRate sets the fixed step size alpha
func WithLearningRate(alpha float64) Option {
	return func(t *Trainer) {
		t.learningRate = alpha
	}
}

// WithIterations sets the exact number of update steps T
func WithIterations(iters int) Option {
	return func(t *Trainer) {
		t.iterations = iters
	}
}

// WithLambda sets the L2 regularization strength
func WithLambda(lambda float64) Option {
	return func(t *Trainer) {
		t.lambda = lambda
	}
}

// WithLogger sets the logger used for run start/finish records
func WithLogger(logger log.Logger) Option {
	return func(t *Trainer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithObserver attaches a per-iteration observer, e.g. Prometheus metrics
func WithObserver(o Observer) Option {
	return func(t *Trainer) {
		if o != nil {
			t.observer = o
		}
	}
}

// WithLogEvery logs the cost at debug level every n iterations (0 disables)
func WithLogEvery(n int) Option {
	return func(t *Trainer) {
		t.logEvery = n
	}
}

// WithParallelThreshold sets the row count above which evaluation runs in parallel
func WithParallelThreshold(rows int) Option {
	return func(t *Trainer) {
		t.parallelThreshold = rows
	}
}
