package linear_model

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"slices"

	"github.com/YuminosukeSato/gdlogit/core/model"
	"github.com/YuminosukeSato/gdlogit/linear"
	"github.com/YuminosukeSato/gdlogit/metrics"
	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/YuminosukeSato/gdlogit/pkg/log"
	"github.com/YuminosukeSato/gdlogit/preprocessing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const modelName = "LogisticRegression"

// LogisticRegression is a scikit-learn style classifier trained by
// full-batch gradient descent. Two classes give a single binary model; more
// give one-vs-all. A bias column is added internally, so X holds features
// only.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	learningRate float64
	maxIter      int
	lambda       float64

	logger   log.Logger
	observer linear.Observer

	// Model parameters
	classes_   []int      // Sorted distinct labels
	theta_     *mat.Dense // 1 x (n+1) for binary, K x (n+1) otherwise; column 0 is the bias
	histories_ [][]float64
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		learningRate: linear.DefaultLearningRate,
		maxIter:      linear.DefaultIterations,
		logger:       log.GetLoggerWithName(modelName),
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRLearningRate sets the gradient-descent step size
func WithLRLearningRate(alpha float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.learningRate = alpha
	}
}

// WithLRMaxIter sets the exact number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRLambda sets the L2 regularization strength
func WithLRLambda(lambda float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.lambda = lambda
	}
}

// WithLRLogger sets the logger
func WithLRLogger(logger log.Logger) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		if logger != nil {
			lr.logger = logger
		}
	}
}

// WithLRObserver attaches a training observer
func WithLRObserver(o linear.Observer) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.observer = o
	}
}

// Fit trains the model. y must be an n x 1 column of integer labels.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	return lr.FitContext(context.Background(), X, y)
}

// FitContext is Fit with cancellation.
func (lr *LogisticRegression) FitContext(ctx context.Context, X, y mat.Matrix) error {
	const op = "LogisticRegression.Fit"

	if X == nil || y == nil {
		return errors.NewValueError(op, "X and y must not be nil")
	}
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError(op, 1, yCols, 1)
	}

	classes, err := extractClasses(y)
	if err != nil {
		return err
	}
	if len(classes) < 2 {
		return errors.NewValidationError("y", "need at least 2 distinct classes", classes)
	}

	// labels become class indices 0..K-1
	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	yIdx := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		yIdx.SetVec(i, float64(index[int(y.At(i, 0))]))
	}

	Xb := preprocessing.AddBias(X)
	opts := []linear.Option{
		linear.WithLearningRate(lr.learningRate),
		linear.WithIterations(lr.maxIter),
		linear.WithLambda(lr.lambda),
		linear.WithLogger(lr.logger),
		linear.WithObserver(lr.observer),
	}
	trainer := linear.NewTrainer(opts...)

	lr.logger.Info("fit started",
		log.ModelNameKey, modelName,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures+1,
		log.ClassesKey, len(classes),
		log.HyperParamsKey, lr.GetParams(),
	)

	var theta *mat.Dense
	var histories [][]float64
	if len(classes) == 2 {
		res, err := trainer.Train(ctx, Xb, yIdx, mat.NewVecDense(nFeatures+1, nil))
		if err != nil {
			return err
		}
		theta = mat.NewDense(1, nFeatures+1, res.Theta.RawVector().Data)
		histories = [][]float64{res.CostHistory}
	} else {
		ova, err := linear.TrainOneVsAll(ctx, trainer, Xb, yIdx, len(classes))
		if err != nil {
			return err
		}
		theta = ova.Theta
		histories = ova.Histories
	}

	lr.classes_ = classes
	lr.theta_ = theta
	lr.histories_ = histories
	lr.state.SetFitted(nFeatures, nSamples)
	return nil
}

// extractClasses returns the sorted distinct labels of y, which must be
// integer valued.
func extractClasses(y mat.Matrix) ([]int, error) {
	rows, _ := y.Dims()
	seen := make(map[int]bool)
	for i := 0; i < rows; i++ {
		v := y.At(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, errors.NewValidationError("y", fmt.Sprintf("labels must be integers; row %d", i), v)
		}
		seen[int(v)] = true
	}
	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	slices.Sort(classes)
	return classes, nil
}

func (lr *LogisticRegression) binary() bool {
	return len(lr.classes_) == 2
}

// margins returns θ·[1, x] for every row of X and every model row.
func (lr *LogisticRegression) margins(method string, X mat.Matrix) (*mat.Dense, error) {
	if err := lr.state.RequireFitted(modelName, method); err != nil {
		return nil, err
	}
	if X == nil {
		return nil, errors.NewValueError(modelName+"."+method, "X must not be nil")
	}
	nFeatures, _ := lr.state.GetDimensions()
	nSamples, cols := X.Dims()
	if nSamples == 0 {
		return nil, errors.NewModelError(modelName+"."+method, "empty data", errors.ErrEmptyData)
	}
	if cols != nFeatures {
		return nil, errors.NewDimensionError(modelName+"."+method, nFeatures, cols, 1)
	}

	k, _ := lr.theta_.Dims()
	out := mat.NewDense(nSamples, k, nil)
	out.Mul(preprocessing.AddBias(X), lr.theta_.T())
	return out, nil
}

// DecisionScores returns the logistic score of every model for every row:
// n x 1 for a binary model (probability of Classes()[1]) and n x K for
// one-vs-all, unnormalized.
func (lr *LogisticRegression) DecisionScores(X mat.Matrix) (*mat.Dense, error) {
	z, err := lr.margins("DecisionScores", X)
	if err != nil {
		return nil, err
	}
	z.Apply(func(_, _ int, v float64) float64 { return linear.Sigmoid(v) }, z)
	return z, nil
}

// Predict returns an n x 1 column of class labels. With more than two
// classes the label is the argmax of the raw margins Θ_k·x rather than of
// the clamped logistic scores, so two classes whose scores both saturate
// are still told apart by margin; only equal margins fall back to the
// lowest class index.
func (lr *LogisticRegression) Predict(X mat.Matrix) (*mat.Dense, error) {
	labels, err := lr.predictLabels("Predict", X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(labels), 1, nil)
	for i, l := range labels {
		out.Set(i, 0, float64(l))
	}
	return out, nil
}

func (lr *LogisticRegression) predictLabels(method string, X mat.Matrix) ([]int, error) {
	z, err := lr.margins(method, X)
	if err != nil {
		return nil, err
	}
	n, _ := z.Dims()
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		row := z.RawRowView(i)
		if lr.binary() {
			if linear.Sigmoid(row[0]) >= linear.DecisionThreshold {
				labels[i] = lr.classes_[1]
			} else {
				labels[i] = lr.classes_[0]
			}
			continue
		}
		// argmax over margins, the first maximum wins
		labels[i] = lr.classes_[floats.MaxIdx(row)]
	}
	return labels, nil
}

// PredictProba returns an n x K matrix of class probabilities. Binary rows
// are [1-p, p]; one-vs-all rows are the per-class scores normalized to sum
// to one.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	scores, err := lr.DecisionScores(X)
	if err != nil {
		return nil, err
	}
	n, _ := scores.Dims()
	if lr.binary() {
		out := mat.NewDense(n, 2, nil)
		for i := 0; i < n; i++ {
			p := scores.At(i, 0)
			out.Set(i, 0, 1-p)
			out.Set(i, 1, p)
		}
		return out, nil
	}
	for i := 0; i < n; i++ {
		row := scores.RawRowView(i)
		// scores are clamped away from zero, so the sum is positive
		floats.Scale(1/floats.Sum(row), row)
	}
	return scores, nil
}

// Score returns the mean accuracy on the given data and labels.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.predictLabels("Score", X)
	if err != nil {
		return 0, err
	}
	if y == nil {
		return 0, errors.NewValueError(modelName+".Score", "y must not be nil")
	}
	yRows, _ := y.Dims()
	if yRows != len(pred) {
		return 0, errors.NewDimensionError(modelName+".Score", len(pred), yRows, 0)
	}
	truth := make([]int, yRows)
	for i := range truth {
		truth[i] = int(y.At(i, 0))
	}
	return metrics.Accuracy(truth, pred)
}

// CostHistory returns the per-iteration cost of every trained model row.
func (lr *LogisticRegression) CostHistory() [][]float64 {
	out := make([][]float64, len(lr.histories_))
	for i, h := range lr.histories_ {
		out[i] = slices.Clone(h)
	}
	return out
}

// Theta returns a copy of the full parameter matrix, bias in column 0.
func (lr *LogisticRegression) Theta() *mat.Dense {
	if lr.theta_ == nil {
		return nil
	}
	return mat.DenseCopyOf(lr.theta_)
}

// Coef returns the non-bias weights, one row per model.
func (lr *LogisticRegression) Coef() *mat.Dense {
	if lr.theta_ == nil {
		return nil
	}
	k, cols := lr.theta_.Dims()
	return mat.DenseCopyOf(lr.theta_.Slice(0, k, 1, cols))
}

// Intercept returns the bias weight of every model row.
func (lr *LogisticRegression) Intercept() []float64 {
	if lr.theta_ == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.theta_)
}

// Classes returns the sorted class labels seen by Fit.
func (lr *LogisticRegression) Classes() []int {
	return slices.Clone(lr.classes_)
}

// IsFitted reports whether Fit has succeeded.
func (lr *LogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"learning_rate": lr.learningRate,
		"max_iter":      lr.maxIter,
		"lambda":        lr.lambda,
	}
}

// logisticSnapshot is the gob wire form of a LogisticRegression.
type logisticSnapshot struct {
	LearningRate float64
	MaxIter      int
	Lambda       float64
	State        model.ModelState
	Classes      []int
	Rows, Cols   int
	Theta        []float64
	Histories    [][]float64
}

// validate checks that a fitted snapshot can serve predictions: one
// parameter row for two classes, one row per class otherwise, and a bias
// column on top of the recorded feature count.
func (snap *logisticSnapshot) validate() error {
	const op = "LogisticRegression.GobDecode"
	if snap.Rows == 0 || snap.Cols == 0 || len(snap.Theta) != snap.Rows*snap.Cols {
		return errors.NewValueError(op, "corrupt parameter matrix")
	}
	k := len(snap.Classes)
	if k < 2 {
		return errors.NewValueError(op, fmt.Sprintf("fitted model needs at least 2 classes, got %d", k))
	}
	wantRows := k
	if k == 2 {
		wantRows = 1
	}
	if snap.Rows != wantRows {
		return errors.NewValueError(op, fmt.Sprintf("%d classes need %d parameter rows, got %d", k, wantRows, snap.Rows))
	}
	if snap.Cols != snap.State.NFeatures+1 {
		return errors.NewValueError(op, fmt.Sprintf("%d features need %d parameter columns, got %d", snap.State.NFeatures, snap.State.NFeatures+1, snap.Cols))
	}
	return nil
}

// GobEncode implements gob.GobEncoder.
func (lr *LogisticRegression) GobEncode() ([]byte, error) {
	snap := logisticSnapshot{
		LearningRate: lr.learningRate,
		MaxIter:      lr.maxIter,
		Lambda:       lr.lambda,
		State:        lr.state.GetState(),
		Classes:      lr.classes_,
		Histories:    lr.histories_,
	}
	if lr.theta_ != nil {
		snap.Rows, snap.Cols = lr.theta_.Dims()
		snap.Theta = mat.DenseCopyOf(lr.theta_).RawMatrix().Data
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, errors.Wrap(err, "encode LogisticRegression")
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (lr *LogisticRegression) GobDecode(data []byte) error {
	var snap logisticSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return errors.Wrap(err, "decode LogisticRegression")
	}
	if snap.State.Fitted {
		if err := snap.validate(); err != nil {
			return err
		}
	}

	if lr.state == nil {
		lr.state = model.NewStateManager()
	}
	if lr.logger == nil {
		lr.logger = log.GetLoggerWithName(modelName)
	}
	lr.learningRate = snap.LearningRate
	lr.maxIter = snap.MaxIter
	lr.lambda = snap.Lambda
	lr.classes_ = snap.Classes
	lr.histories_ = snap.Histories
	lr.theta_ = nil
	if snap.Rows > 0 && snap.Cols > 0 {
		lr.theta_ = mat.NewDense(snap.Rows, snap.Cols, snap.Theta)
	}
	lr.state.SetState(snap.State)
	return nil
}
