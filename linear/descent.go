package linear

import (
	"context"
	"math"
	"time"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/YuminosukeSato/gdlogit/pkg/log"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultLearningRate is the step size used when none is configured.
	DefaultLearningRate = 0.1
	// DefaultIterations is the iteration budget used when none is configured.
	DefaultIterations = 1000
)

// Observer receives progress from a training run. Implementations must be
// safe for concurrent use because one-vs-all trains classes in parallel.
type Observer interface {
	ObserveIteration(runID string, iter int, cost float64)
	ObserveRun(runID string, iters int, finalCost float64, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveIteration(string, int, float64)          {}
func (nopObserver) ObserveRun(string, int, float64, time.Duration) {}

// Result is the output of one gradient-descent run.
type Result struct {
	// Theta is the final parameter vector, frozen once returned.
	Theta *mat.VecDense
	// CostHistory holds one entry per iteration: the cost of the parameters
	// that produced that iteration's gradient.
	CostHistory []float64
	// RunID identifies the run in logs and metrics.
	RunID    string
	Duration time.Duration
}

// FinalCost returns the last recorded cost.
func (r *Result) FinalCost() float64 {
	if len(r.CostHistory) == 0 {
		return math.NaN()
	}
	return r.CostHistory[len(r.CostHistory)-1]
}

// Trainer runs full-batch gradient descent with a fixed learning rate and a
// fixed number of iterations. A Trainer holds configuration only and can be
// shared between goroutines.
type Trainer struct {
	learningRate      float64
	iterations        int
	lambda            float64
	logger            log.Logger
	observer          Observer
	logEvery          int
	parallelThreshold int
}

// NewTrainer creates a Trainer with the given options
func NewTrainer(opts ...Option) *Trainer {
	t := &Trainer{
		learningRate:      DefaultLearningRate,
		iterations:        DefaultIterations,
		logger:            log.GetLoggerWithName("linear"),
		observer:          nopObserver{},
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// LearningRate returns alpha.
func (t *Trainer) LearningRate() float64 { return t.learningRate }

// Iterations returns T.
func (t *Trainer) Iterations() int { return t.iterations }

// Lambda returns the regularization strength.
func (t *Trainer) Lambda() float64 { return t.lambda }

// withLogger returns a shallow copy of t logging to logger.
func (t *Trainer) withLogger(logger log.Logger) *Trainer {
	c := *t
	c.logger = logger
	return &c
}

func (t *Trainer) validate() error {
	if math.IsNaN(t.learningRate) || math.IsInf(t.learningRate, 0) || t.learningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be a positive finite number", t.learningRate)
	}
	if t.iterations <= 0 {
		return errors.NewValidationError("iterations", "must be a positive integer", t.iterations)
	}
	return nil
}

// Train runs exactly Iterations() update steps starting from theta0, which
// is copied and never modified. Every input is validated before the first
// iteration; after that the only possible error is cancellation of ctx,
// which is checked between iterations. A rising cost is not an error: it is
// visible in the returned history and reported as a DivergenceWarning.
func (t *Trainer) Train(ctx context.Context, X mat.Matrix, y, theta0 mat.Vector) (*Result, error) {
	const op = "GradientDescent.Train"

	if err := t.validate(); err != nil {
		return nil, err
	}
	if err := validateProblem(op, X, y, theta0, t.lambda); err != nil {
		return nil, err
	}
	m, n := X.Dims()

	runID := uuid.NewString()
	logger := t.logger.With(log.ModelNameKey, "GradientDescent", log.EstimatorIDKey, runID)
	logger.Info("training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, m,
		log.FeaturesKey, n,
		log.LearningRateKey, t.learningRate,
		log.RegularizationKey, t.lambda,
		log.IterationsKey, t.iterations,
	)

	theta := mat.VecDenseCopyOf(theta0)
	history := make([]float64, t.iterations)
	start := time.Now()

	for iter := 0; iter < t.iterations; iter++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("training canceled", log.IterationKey, iter, log.ErrAttrKey, err)
			return nil, errors.NewModelError(op, "canceled", err)
		}

		cost, grad := evaluate(X, y, theta, t.lambda, t.parallelThreshold, true)
		history[iter] = cost
		// grad was computed from the whole of theta before this update.
		theta.AddScaledVec(theta, -t.learningRate, grad)

		t.observer.ObserveIteration(runID, iter+1, cost)
		if t.logEvery > 0 && (iter+1)%t.logEvery == 0 {
			logger.Debug("iteration", log.IterationKey, iter+1, log.LossKey, cost)
		}
	}

	elapsed := time.Since(start)
	final := history[len(history)-1]
	t.observer.ObserveRun(runID, t.iterations, final, elapsed)

	if !(final <= history[0]) {
		// errors.Warn is the only report; SetupLogger routes it into the log.
		errors.Warn(errors.NewDivergenceWarning(runID, t.iterations, history[0], final, t.learningRate))
	}

	logger.Info("training finished",
		log.LossKey, final,
		log.DurationMsKey, elapsed.Milliseconds(),
	)

	return &Result{
		Theta:       theta,
		CostHistory: history,
		RunID:       runID,
		Duration:    elapsed,
	}, nil
}

// GradientDescent trains with alpha, iters and lambda and returns the final
// parameters with the per-iteration cost history.
func GradientDescent(X mat.Matrix, y, theta0 mat.Vector, alpha float64, iters int, lambda float64) (*mat.VecDense, []float64, error) {
	t := NewTrainer(WithLearningRate(alpha), WithIterations(iters), WithLambda(lambda))
	res, err := t.Train(context.Background(), X, y, theta0)
	if err != nil {
		return nil, nil, err
	}
	return res.Theta, res.CostHistory, nil
}
