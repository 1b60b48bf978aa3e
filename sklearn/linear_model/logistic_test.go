package linear_model

import (
	"bytes"
	"context"
	"encoding/gob"
	"math"
	"testing"

	"github.com/YuminosukeSato/gdlogit/core/model"
	"github.com/YuminosukeSato/gdlogit/linear"
	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/YuminosukeSato/gdlogit/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func separableBinary() (*mat.Dense, *mat.Dense) {
	// Class 0 around (1, 1), class 1 around (3, 3)
	X := mat.NewDense(6, 2, []float64{
		0.5, 0.5,
		1.0, 1.5,
		1.5, 1.0,
		3.0, 2.5,
		2.5, 3.0,
		3.5, 3.5,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})
	return X, y
}

// triangle returns three separable clusters labeled 3, 7 and 10.
func triangle() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(9, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		5, 0,
		5, 1,
		6, 0,
		2, 5,
		3, 5,
		2, 6,
	})
	y := mat.NewDense(9, 1, []float64{3, 3, 3, 7, 7, 7, 10, 10, 10})
	return X, y
}

func TestLogisticRegression_FitPredict_Binary(t *testing.T) {
	X, y := separableBinary()
	logger, _ := log.NewTestLogger(log.LevelInfo)
	lr := NewLogisticRegression(WithLRMaxIter(1000), WithLRLogger(logger))

	require.NoError(t, lr.Fit(X, y))
	assert.True(t, lr.IsFitted())
	assert.Equal(t, []int{0, 1}, lr.Classes())

	predictions, err := lr.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y.RawMatrix().Data, predictions.RawMatrix().Data)

	XTest := mat.NewDense(2, 2, []float64{
		1.0, 1.0,
		3.0, 3.0,
	})
	testPreds, err := lr.Predict(XTest)
	require.NoError(t, err)
	assert.Equal(t, 0.0, testPreds.At(0, 0))
	assert.Equal(t, 1.0, testPreds.At(1, 0))

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	assert.True(t, logger.ContainsMessage("fit started"))
	assert.True(t, logger.ContainsMessage("training finished"))
}

func TestLogisticRegression_MatchesCore(t *testing.T) {
	X, y := separableBinary()
	lr := NewLogisticRegression(WithLRMaxIter(300), WithLRLambda(0.5), WithLRLearningRate(0.2))
	require.NoError(t, lr.Fit(X, y))

	Xb := mat.NewDense(6, 3, nil)
	for i := 0; i < 6; i++ {
		Xb.SetRow(i, []float64{1, X.At(i, 0), X.At(i, 1)})
	}
	theta, history, err := linear.GradientDescent(Xb, mat.NewVecDense(6, y.RawMatrix().Data), mat.NewVecDense(3, nil), 0.2, 300, 0.5)
	require.NoError(t, err)

	assert.Equal(t, theta.RawVector().Data, lr.Theta().RawRowView(0))
	assert.Equal(t, [][]float64{history}, lr.CostHistory())
	assert.Equal(t, []float64{theta.AtVec(0)}, lr.Intercept())
	assert.Equal(t, theta.RawVector().Data[1:], lr.Coef().RawRowView(0))
}

func TestLogisticRegression_PredictProba_Binary(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	lr := NewLogisticRegression(WithLRMaxIter(500))
	require.NoError(t, lr.Fit(X, y))

	probas, err := lr.PredictProba(X)
	require.NoError(t, err)
	rows, cols := probas.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 2, cols)

	scores, err := lr.DecisionScores(X)
	require.NoError(t, err)
	predictions, err := lr.Predict(X)
	require.NoError(t, err)

	for i := 0; i < rows; i++ {
		row := probas.RawRowView(i)
		assert.InDelta(t, 1.0, floats.Sum(row), 1e-12)
		assert.Equal(t, scores.At(i, 0), row[1])
		if predictions.At(i, 0) == 1 {
			assert.GreaterOrEqual(t, row[1], row[0], "sample %d", i)
		} else {
			assert.Greater(t, row[0], row[1], "sample %d", i)
		}
	}
}

func TestLogisticRegression_Regularization(t *testing.T) {
	X := mat.NewDense(10, 5, []float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 1,
		1, 1, 0, 0, 0,
		0, 1, 1, 0, 0,
		0, 0, 1, 1, 0,
		0, 0, 0, 1, 1,
		1, 0, 0, 0, 1,
	})
	y := mat.NewDense(10, 1, []float64{0, 0, 0, 1, 1, 0, 0, 1, 1, 1})

	strong := NewLogisticRegression(WithLRLambda(10), WithLRMaxIter(1000))
	require.NoError(t, strong.Fit(X, y))
	weak := NewLogisticRegression(WithLRLambda(0), WithLRMaxIter(1000))
	require.NoError(t, weak.Fit(X, y))

	strongNorm := mat.Norm(strong.Coef(), 2)
	weakNorm := mat.Norm(weak.Coef(), 2)
	assert.Less(t, strongNorm, weakNorm)
}

func TestLogisticRegression_Multiclass(t *testing.T) {
	X, y := triangle()
	lr := NewLogisticRegression(WithLRMaxIter(2000))
	require.NoError(t, lr.FitContext(context.Background(), X, y))

	assert.Equal(t, []int{3, 7, 10}, lr.Classes())
	rows, cols := lr.Theta().Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.Len(t, lr.CostHistory(), 3)

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 8.0/9.0)

	probas, err := lr.PredictProba(X)
	require.NoError(t, err)
	_, pc := probas.Dims()
	require.Equal(t, 3, pc)

	predictions, err := lr.Predict(X)
	require.NoError(t, err)
	classes := lr.Classes()
	for i := 0; i < 9; i++ {
		row := probas.RawRowView(i)
		assert.InDelta(t, 1.0, floats.Sum(row), 1e-12)
		for _, p := range row {
			assert.True(t, p > 0 && p < 1)
		}
		assert.Equal(t, float64(classes[floats.MaxIdx(row)]), predictions.At(i, 0))
	}
}

func TestLogisticRegression_GetParams(t *testing.T) {
	params := NewLogisticRegression().GetParams()
	assert.Equal(t, linear.DefaultLearningRate, params["learning_rate"])
	assert.Equal(t, linear.DefaultIterations, params["max_iter"])
	assert.Equal(t, 0.0, params["lambda"])

	params = NewLogisticRegression(WithLRLambda(2), WithLRMaxIter(50)).GetParams()
	assert.Equal(t, 2.0, params["lambda"])
	assert.Equal(t, 50, params["max_iter"])
}

func TestLogisticRegression_NotFitted(t *testing.T) {
	lr := NewLogisticRegression()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	_, err := lr.Predict(X)
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)

	_, err = lr.PredictProba(X)
	assert.True(t, errors.As(err, &nf))

	_, err = lr.Score(X, mat.NewDense(2, 1, nil))
	assert.True(t, errors.As(err, &nf))

	assert.Nil(t, lr.Theta())
	assert.Nil(t, lr.Coef())
	assert.Nil(t, lr.Intercept())
}

func TestLogisticRegression_FitErrors(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	tests := []struct {
		name  string
		y     mat.Matrix
		check func(t *testing.T, err error)
	}{
		{"single class", mat.NewDense(3, 1, []float64{1, 1, 1}), func(t *testing.T, err error) {
			var valErr *errors.ValidationError
			assert.True(t, errors.As(err, &valErr))
		}},
		{"fractional label", mat.NewDense(3, 1, []float64{0, 0.5, 1}), func(t *testing.T, err error) {
			var valErr *errors.ValidationError
			assert.True(t, errors.As(err, &valErr))
		}},
		{"NaN label", mat.NewDense(3, 1, []float64{0, math.NaN(), 1}), func(t *testing.T, err error) {
			var valErr *errors.ValidationError
			assert.True(t, errors.As(err, &valErr))
		}},
		{"row mismatch", mat.NewDense(2, 1, []float64{0, 1}), func(t *testing.T, err error) {
			var dimErr *errors.DimensionError
			require.True(t, errors.As(err, &dimErr))
			assert.Equal(t, 0, dimErr.Axis)
		}},
		{"two columns", mat.NewDense(3, 2, nil), func(t *testing.T, err error) {
			var dimErr *errors.DimensionError
			require.True(t, errors.As(err, &dimErr))
			assert.Equal(t, 1, dimErr.Axis)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLogisticRegression(WithLRMaxIter(5))
			err := lr.Fit(X, tt.y)
			require.Error(t, err)
			tt.check(t, err)
			assert.False(t, lr.IsFitted())
		})
	}

	lr := NewLogisticRegression(WithLRLearningRate(-1))
	err := lr.Fit(X, mat.NewDense(3, 1, []float64{0, 1, 0}))
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "learning_rate", valErr.ParamName)
}

func TestLogisticRegression_PredictDimension(t *testing.T) {
	X, y := separableBinary()
	lr := NewLogisticRegression(WithLRMaxIter(10))
	require.NoError(t, lr.Fit(X, y))

	_, err := lr.Predict(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)
}

func TestLogisticRegression_GobRoundTrip(t *testing.T) {
	X, y := triangle()
	lr := NewLogisticRegression(WithLRMaxIter(200), WithLRLambda(0.1))
	require.NoError(t, lr.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(lr, &buf))

	restored := NewLogisticRegression()
	require.NoError(t, model.LoadModelFromReader(restored, &buf))

	assert.True(t, restored.IsFitted())
	assert.Equal(t, lr.GetParams(), restored.GetParams())
	assert.Equal(t, lr.Classes(), restored.Classes())
	assert.True(t, mat.Equal(lr.Theta(), restored.Theta()))
	assert.Equal(t, lr.CostHistory(), restored.CostHistory())

	want, err := lr.PredictProba(X)
	require.NoError(t, err)
	got, err := restored.PredictProba(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))

	// an unfitted model round-trips as unfitted
	buf.Reset()
	require.NoError(t, model.SaveModelToWriter(NewLogisticRegression(WithLRMaxIter(7)), &buf))
	empty := NewLogisticRegression()
	require.NoError(t, model.LoadModelFromReader(empty, &buf))
	assert.False(t, empty.IsFitted())
	assert.Equal(t, 7, empty.GetParams()["max_iter"])
}

func encodeSnapshot(t *testing.T, snap logisticSnapshot) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(snap))
	return buf.Bytes()
}

func TestLogisticRegression_GobDecodeRejectsInconsistentClasses(t *testing.T) {
	fitted := model.ModelState{Fitted: true, NFeatures: 1, NSamples: 4}
	tests := []struct {
		name    string
		classes []int
		rows    int
		cols    int
	}{
		{"no classes", nil, 1, 2},
		{"single class", []int{0}, 1, 2},
		{"binary with two rows", []int{0, 1}, 2, 2},
		{"three classes with one row", []int{0, 1, 2}, 1, 2},
		{"three classes with two rows", []int{0, 1, 2}, 2, 2},
		{"missing bias column", []int{0, 1}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeSnapshot(t, logisticSnapshot{
				State:   fitted,
				Classes: tt.classes,
				Rows:    tt.rows,
				Cols:    tt.cols,
				Theta:   make([]float64, tt.rows*tt.cols),
			})
			lr := NewLogisticRegression()
			err := lr.GobDecode(data)
			var valueErr *errors.ValueError
			require.True(t, errors.As(err, &valueErr))
			assert.False(t, lr.IsFitted())
		})
	}
}

func TestLogisticRegression_PredictUsesMarginsWhenScoresSaturate(t *testing.T) {
	// classes 7 and 9 both saturate the logistic score at x = 1
	data := encodeSnapshot(t, logisticSnapshot{
		LearningRate: 0.1,
		MaxIter:      1,
		State:        model.ModelState{Fitted: true, NFeatures: 1, NSamples: 3},
		Classes:      []int{3, 7, 9},
		Rows:         3,
		Cols:         2,
		Theta: []float64{
			0, 0,
			0, 100,
			0, 200,
		},
	})
	lr := NewLogisticRegression()
	require.NoError(t, lr.GobDecode(data))

	X := mat.NewDense(1, 1, []float64{1})
	scores, err := lr.DecisionScores(X)
	require.NoError(t, err)
	assert.Equal(t, scores.At(0, 1), scores.At(0, 2))

	pred, err := lr.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 9.0, pred.At(0, 0))
}
