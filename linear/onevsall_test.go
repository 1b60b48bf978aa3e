package linear

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/YuminosukeSato/gdlogit/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// threeClusters returns perClass points around each of three centers with a
// leading bias column, labeled 0, 1 and 2.
func threeClusters(rng *rand.Rand, perClass int) (*mat.Dense, *mat.VecDense) {
	centers := [][2]float64{{-4, -4}, {4, -4}, {0, 4}}
	m := perClass * len(centers)
	X := mat.NewDense(m, 3, nil)
	y := mat.NewVecDense(m, nil)
	i := 0
	for c, center := range centers {
		for p := 0; p < perClass; p++ {
			X.SetRow(i, []float64{1, center[0] + rng.NormFloat64(), center[1] + rng.NormFloat64()})
			y.SetVec(i, float64(c))
			i++
		}
	}
	return X, y
}

type panickingObserver struct{}

func (panickingObserver) ObserveIteration(string, int, float64) {
	panic("observer exploded")
}

func (panickingObserver) ObserveRun(string, int, float64, time.Duration) {}

func TestTrainOneVsAll_ThreeClusters(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	Xtrain, ytrain := threeClusters(rng, 60)
	Xtest, ytest := threeClusters(rng, 30)

	logger, _ := log.NewTestLogger(log.LevelInfo)
	trainer := NewTrainer(WithLearningRate(0.1), WithIterations(1000), WithLogger(logger))

	ova, err := TrainOneVsAll(context.Background(), trainer, Xtrain, ytrain, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, ova.Classes())

	rows, cols := ova.Theta.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	require.Len(t, ova.Histories, 3)
	for k, h := range ova.Histories {
		assert.Len(t, h, 1000, "class %d", k)
		assert.Less(t, h[len(h)-1], h[0], "class %d", k)
		assert.NotEmpty(t, ova.RunIDs[k])
	}

	predicted, err := ova.PredictBatch(Xtest)
	require.NoError(t, err)
	correct := 0
	for i, p := range predicted {
		if float64(p) == ytest.AtVec(i) {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(predicted))
	assert.Greater(t, accuracy, 0.9)

	assert.True(t, logger.ContainsMessage("one-vs-all training finished"))
	assert.True(t, logger.ContainsField(log.ClassKey, 2.0))
}

func TestTrainOneVsAll_RowMatchesBinaryRun(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	X, y := threeClusters(rng, 20)
	trainer := NewTrainer(WithIterations(200), WithLambda(0.5))

	ova, err := TrainOneVsAll(context.Background(), trainer, X, y, 3)
	require.NoError(t, err)

	for class := 0; class < 3; class++ {
		res, err := trainer.Train(context.Background(), X, relabel(y, class), mat.NewVecDense(3, nil))
		require.NoError(t, err)
		assert.Equal(t, res.Theta.RawVector().Data, ova.Theta.RawRowView(class))
		assert.Equal(t, res.CostHistory, ova.Histories[class])
	}
}

func TestOneVsAll_PredictTies(t *testing.T) {
	ova := &OneVsAll{Theta: mat.NewDense(3, 3, nil)}

	scores, err := ova.Scores(mat.NewVecDense(3, []float64{1, 5, -5}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, scores)

	class, err := ova.Predict(mat.NewVecDense(3, []float64{1, 5, -5}))
	require.NoError(t, err)
	assert.Equal(t, 0, class, "ties go to the lowest class index")

	// classes 1 and 2 both saturate the sigmoid, the margin still separates them
	ova = &OneVsAll{Theta: mat.NewDense(3, 2, []float64{
		0, 0,
		0, 100,
		0, 200,
	})}
	scores, err = ova.Scores(mat.NewVecDense(2, []float64{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, scores[1], scores[2])
	class, err = ova.Predict(mat.NewVecDense(2, []float64{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, 2, class)
}

func TestOneVsAll_PredictDimension(t *testing.T) {
	ova := &OneVsAll{Theta: mat.NewDense(2, 3, nil)}

	_, err := ova.Predict(mat.NewVecDense(2, nil))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)

	_, err = ova.PredictBatch(mat.NewDense(1, 4, nil))
	assert.True(t, errors.As(err, &dimErr))

	_, err = ova.Predict(nil)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestTrainOneVsAll_Validation(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 0, 1, 1, 1, 2})
	ctx := context.Background()

	t.Run("too few classes", func(t *testing.T) {
		_, err := TrainOneVsAll(ctx, nil, X, mat.NewVecDense(3, []float64{0, 0, 0}), 1)
		var valErr *errors.ValidationError
		require.True(t, errors.As(err, &valErr))
		assert.Equal(t, "classes", valErr.ParamName)
	})

	for _, labels := range [][]float64{{0, 1, 3}, {0, -1, 1}, {0, 1.5, 2}} {
		_, err := TrainOneVsAll(ctx, nil, X, mat.NewVecDense(3, labels), 3)
		var valErr *errors.ValidationError
		require.True(t, errors.As(err, &valErr), "labels %v", labels)
		assert.Equal(t, "y", valErr.ParamName)
	}

	_, err := TrainOneVsAll(ctx, nil, X, mat.NewVecDense(2, []float64{0, 1}), 2)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = TrainOneVsAll(ctx, nil, &mat.Dense{}, mat.NewVecDense(1, nil), 2)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = TrainOneVsAll(ctx, nil, nil, nil, 2)
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))
}

func TestTrainOneVsAll_WorkerFailures(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	X, y := threeClusters(rng, 5)

	t.Run("panic is recovered", func(t *testing.T) {
		trainer := NewTrainer(WithIterations(5), WithObserver(panickingObserver{}))
		ova, err := TrainOneVsAll(context.Background(), trainer, X, y, 3)
		require.Error(t, err)
		assert.Nil(t, ova)

		var panicErr *errors.PanicError
		require.True(t, errors.As(err, &panicErr))
		assert.Equal(t, "observer exploded", panicErr.PanicValue)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ova, err := TrainOneVsAll(ctx, NewTrainer(WithIterations(5)), X, y, 3)
		require.Error(t, err)
		assert.Nil(t, ova)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 0, argmax([]float64{1}))
	assert.Equal(t, 2, argmax([]float64{-3, -2, -1}))
	assert.Equal(t, 1, argmax([]float64{0, 4, 4, 1}))
}
