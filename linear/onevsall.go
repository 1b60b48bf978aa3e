package linear

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/YuminosukeSato/gdlogit/pkg/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// OneVsAll holds K binary classifiers, one per class, as the rows of Theta.
type OneVsAll struct {
	// Theta is K x (n+1); row k scores class k against all others.
	Theta *mat.Dense
	// Histories[k] is the cost history of the run that produced row k.
	Histories [][]float64
	// RunIDs[k] is the run ID of class k's training run.
	RunIDs []string
}

// TrainOneVsAll trains one binary classifier per class in [0, k). Labels in y
// must be integers in that range. Each class is relabeled (1 for the class,
// 0 otherwise) and trained from the zero vector with trainer; the K runs share
// no mutable state and execute concurrently, at most one per CPU. The first
// failing class cancels the others.
func TrainOneVsAll(ctx context.Context, trainer *Trainer, X mat.Matrix, y mat.Vector, k int) (*OneVsAll, error) {
	const op = "OneVsAll.Train"

	if trainer == nil {
		trainer = NewTrainer()
	}
	if k < 2 {
		return nil, errors.NewValidationError("classes", "must be at least 2", k)
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError(op, "X and y must not be nil")
	}
	m, cols := X.Dims()
	if m == 0 || cols == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if y.Len() != m {
		return nil, errors.NewDimensionError(op, m, y.Len(), 0)
	}
	for i := 0; i < m; i++ {
		label := y.AtVec(i)
		if label != math.Trunc(label) || label < 0 || label >= float64(k) {
			return nil, errors.NewValidationError("y", fmt.Sprintf("labels must be integers in [0, %d); row %d", k, i), label)
		}
	}

	logger := trainer.logger.With(log.ModelNameKey, "OneVsAll")
	logger.Info("one-vs-all training started", log.ClassesKey, k, log.SamplesKey, m, log.FeaturesKey, cols)

	ova := &OneVsAll{
		Theta:     mat.NewDense(k, cols, nil),
		Histories: make([][]float64, k),
		RunIDs:    make([]string, k),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for class := 0; class < k; class++ {
		class := class // per-iteration copy: module targets go 1.21 loop semantics
		g.Go(func() error {
			return errors.SafeExecute(fmt.Sprintf("%s class %d", op, class), func() error {
				classTrainer := trainer.withLogger(trainer.logger.With(log.ClassKey, class))
				res, err := classTrainer.Train(gctx, X, relabel(y, class), mat.NewVecDense(cols, nil))
				if err != nil {
					return errors.Wrapf(err, "class %d", class)
				}
				// each worker owns exactly one row
				ova.Theta.SetRow(class, res.Theta.RawVector().Data)
				ova.Histories[class] = res.CostHistory
				ova.RunIDs[class] = res.RunID
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("one-vs-all training failed", log.ErrAttrKey, err)
		return nil, err
	}

	logger.Info("one-vs-all training finished", log.ClassesKey, k)
	return ova, nil
}

// relabel returns 1 where y equals class and 0 elsewhere.
func relabel(y mat.Vector, class int) *mat.VecDense {
	n := y.Len()
	out := mat.NewVecDense(n, nil)
	target := float64(class)
	for i := 0; i < n; i++ {
		if y.AtVec(i) == target {
			out.SetVec(i, 1)
		}
	}
	return out
}

// Classes returns K.
func (o *OneVsAll) Classes() int {
	k, _ := o.Theta.Dims()
	return k
}

// margins returns Θ_k·x for every class.
func (o *OneVsAll) margins(op string, x mat.Vector) ([]float64, error) {
	if x == nil {
		return nil, errors.NewValueError(op, "x must not be nil")
	}
	k, cols := o.Theta.Dims()
	if x.Len() != cols {
		return nil, errors.NewDimensionError(op, cols, x.Len(), 1)
	}
	xs := vecData(x)
	out := make([]float64, k)
	for c := 0; c < k; c++ {
		out[c] = floats.Dot(o.Theta.RawRowView(c), xs)
	}
	return out, nil
}

// Scores returns Sigmoid(Θ_k·x) for every class k.
func (o *OneVsAll) Scores(x mat.Vector) ([]float64, error) {
	scores, err := o.margins("OneVsAll.Scores", x)
	if err != nil {
		return nil, err
	}
	for c := range scores {
		scores[c] = Sigmoid(scores[c])
	}
	return scores, nil
}

// Predict returns the class with the highest score for x. The argmax is
// taken over the margins Θ_k·x, not over the clamped scores Scores returns:
// where two scores saturate to the same clamped value, the larger margin
// wins instead of the lower class index. Only equal margins go to the
// lowest class index.
func (o *OneVsAll) Predict(x mat.Vector) (int, error) {
	margins, err := o.margins("OneVsAll.Predict", x)
	if err != nil {
		return 0, err
	}
	return argmax(margins), nil
}

// PredictBatch predicts every row of X.
func (o *OneVsAll) PredictBatch(X mat.Matrix) ([]int, error) {
	if X == nil {
		return nil, errors.NewValueError("OneVsAll.PredictBatch", "X must not be nil")
	}
	m, cols := X.Dims()
	buf := make([]float64, cols)
	out := make([]int, m)
	for i := 0; i < m; i++ {
		row := mat.NewVecDense(cols, rowData(X, i, buf))
		c, err := o.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// argmax returns the index of the largest value; the lowest index wins ties.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
