// Package log defines standard attribute keys for training and evaluation.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that the JSON output can be filtered per run.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the component producing the record.
	// Examples: "GradientDescent", "OneVsAll", "LogisticRegression"
	ModelNameKey = "model.name"

	// EstimatorIDKey carries the unique ID of one training run.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// ClassKey identifies the class handled by a one-vs-all worker.
	ClassKey = "ml.class"
)

// Data Shape
const (
	// SamplesKey is the number of examples (rows of the design matrix).
	SamplesKey = "data.samples"

	// FeaturesKey is the number of columns of the design matrix, bias included.
	FeaturesKey = "data.features"

	// ClassesKey is the number of classes in a multi-class problem.
	ClassesKey = "data.classes"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// LossKey records the regularized cross-entropy cost.
	LossKey = "metrics.loss"

	// IterationKey records the current gradient-descent iteration.
	IterationKey = "training.iteration"

	// IterationsKey records the configured iteration budget.
	IterationsKey = "training.iterations"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// SuggestionKey provides a hint for resolving an issue.
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
const (
	// LearningRateKey records alpha.
	LearningRateKey = "hyperparams.learning_rate"

	// RegularizationKey records lambda.
	RegularizationKey = "hyperparams.regularization"

	// HyperParamsKey carries the full parameter map of an estimator.
	HyperParamsKey = "model.hyperparams"

	// RandomSeedKey records the seed used for shuffling and synthetic data.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit  = "fit"
	OperationLoad = "load"

	ErrorDivergence = "DIVERGENCE"
)
