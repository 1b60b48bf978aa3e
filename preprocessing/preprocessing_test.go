package preprocessing

import (
	"math"
	"regexp"
	"testing"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAddBias(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{3, 4, 5, 6})
	got := AddBias(X)

	r, c := got.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{1, 3, 4}, got.RawRowView(0))
	assert.Equal(t, []float64{1, 5, 6}, got.RawRowView(1))
	assert.Equal(t, 3.0, X.At(0, 0), "input is not modified")
}

func TestTrainTestSplit(t *testing.T) {
	train, test, err := TrainTestSplit(10, 0.3, 42)
	require.NoError(t, err)
	assert.Len(t, test, 3)
	assert.Len(t, train, 7)

	seen := make(map[int]bool)
	for _, idx := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[idx], "index %d appears twice", idx)
		seen[idx] = true
	}
	assert.Len(t, seen, 10)
	assert.IsIncreasing(t, train)
	assert.IsIncreasing(t, test)

	train2, test2, err := TrainTestSplit(10, 0.3, 42)
	require.NoError(t, err)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	// both sides are always non-empty
	train, test, err = TrainTestSplit(3, 0.01, 1)
	require.NoError(t, err)
	assert.Len(t, test, 1)
	assert.Len(t, train, 2)

	for _, frac := range []float64{0, 1, -0.5, math.NaN()} {
		_, _, err := TrainTestSplit(10, frac, 1)
		var valErr *errors.ValidationError
		assert.True(t, errors.As(err, &valErr), "fraction %v", frac)
	}
	_, _, err = TrainTestSplit(1, 0.5, 1)
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	rows := SelectRows(X, []int{2, 0})
	assert.Equal(t, []float64{5, 6, 1, 2}, rows.RawMatrix().Data)

	v := SelectVec(mat.NewVecDense(3, []float64{7, 8, 9}), []int{1, 2})
	assert.Equal(t, []float64{8, 9}, v.RawVector().Data)

	assert.Equal(t, []string{"c", "a"}, SelectStrings([]string{"a", "b", "c"}, []int{2, 0}))
}

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})
	s := NewStandardScalerDefault()

	_, err := s.Transform(X)
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))

	Xs, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1], "constant feature keeps scale 1")

	col := mat.Col(nil, 0, Xs)
	var sum, sq float64
	for _, v := range col {
		sum += v
		sq += v * v
	}
	assert.InDelta(t, 0, sum/4, 1e-12)
	assert.InDelta(t, 1, sq/4, 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0}, mat.Col(nil, 1, Xs))

	back, err := s.InverseTransform(Xs)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))

	_, err = s.Transform(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	assert.Contains(t, s.String(), "n_features=2")
	assert.Equal(t, true, s.GetParams()["with_mean"])
}

func TestStandardScaler_LargeInput(t *testing.T) {
	n := 3*transformParallelThreshold + 7
	X := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i%5))
	}
	s := NewStandardScalerDefault()
	Xs, err := s.FitTransform(X)
	require.NoError(t, err)

	for j := 0; j < 2; j++ {
		for i := 0; i < n; i++ {
			want := (X.At(i, j) - s.Mean[j]) / s.Scale[j]
			require.InDelta(t, want, Xs.At(i, j), 1e-12)
		}
	}

	back, err := s.InverseTransform(Xs)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-9))
}

func TestStandardScaler_FitErrors(t *testing.T) {
	s := NewStandardScalerDefault()
	assert.True(t, errors.Is(s.Fit(&mat.Dense{}), errors.ErrEmptyData))

	bad := mat.NewDense(2, 1, []float64{1, math.Inf(-1)})
	var ni *errors.NumericalInstabilityError
	assert.True(t, errors.As(s.Fit(bad), &ni))
	assert.False(t, s.IsFitted())
}

func TestCountVectorizer(t *testing.T) {
	corpus := []string{
		"Free entry to win a prize",
		"win win WIN now",
		"call me when you are free",
	}
	v, err := FitVectorizer(corpus, WithMaxFeatures(0))
	require.NoError(t, err)

	// single-character tokens are dropped, terms are lower-cased and sorted
	vocab := v.Vocabulary()
	assert.IsIncreasing(t, vocab)
	assert.NotContains(t, vocab, "a")
	assert.Contains(t, vocab, "win")
	assert.NotContains(t, vocab, "WIN")

	X, err := v.Transform([]string{"win a FREE free prize, win!", "unseen words only"})
	require.NoError(t, err)
	r, c := X.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, len(vocab), c)

	win, ok := v.Index("win")
	require.True(t, ok)
	free, _ := v.Index("free")
	prize, _ := v.Index("prize")
	assert.Equal(t, 2.0, X.At(0, win))
	assert.Equal(t, 2.0, X.At(0, free))
	assert.Equal(t, 1.0, X.At(0, prize))
	assert.Equal(t, 0.0, mat.Sum(X.RowView(1)), "unknown tokens are ignored")
}

func TestCountVectorizer_MaxFeatures(t *testing.T) {
	corpus := []string{"bb aa cc", "bb cc", "bb dd", "ee"}
	v, err := FitVectorizer(corpus, WithMaxFeatures(3))
	require.NoError(t, err)
	// bb:3, cc:2, then aa/dd/ee tie at 1 and aa wins alphabetically
	assert.Equal(t, []string{"aa", "bb", "cc"}, v.Vocabulary())

	bin, err := FitVectorizer(corpus, WithBinary(true))
	require.NoError(t, err)
	X, err := bin.Transform([]string{"bb bb bb"})
	require.NoError(t, err)
	j, _ := bin.Index("bb")
	assert.Equal(t, 1.0, X.At(0, j))

	digits, err := FitVectorizer([]string{"a1 b2 c3"}, WithTokenPattern(regexp.MustCompile(`\w`)))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "a", "b", "c"}, digits.Vocabulary())
}

func TestCountVectorizer_Errors(t *testing.T) {
	v := NewCountVectorizer()
	_, err := v.Transform([]string{"x"})
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	assert.True(t, errors.Is(v.Fit(nil), errors.ErrEmptyData))

	var valueErr *errors.ValueError
	assert.True(t, errors.As(v.Fit([]string{"a b c"}), &valueErr))
}
