package main

import (
	"context"
	"fmt"
	"io"

	"github.com/YuminosukeSato/gdlogit/datasets"
	"github.com/YuminosukeSato/gdlogit/metrics"
	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/YuminosukeSato/gdlogit/pkg/log"
	"github.com/YuminosukeSato/gdlogit/preprocessing"
	"github.com/YuminosukeSato/gdlogit/report"
	"github.com/YuminosukeSato/gdlogit/sklearn/linear_model"
	"gonum.org/v1/gonum/mat"
)

// split holds a train/test partition of a numeric dataset.
type split struct {
	XTrain, XTest *mat.Dense
	yTrain, yTest *mat.Dense
}

func splitNumeric(X *mat.Dense, y *mat.VecDense, testSize float64, seed int64) (*split, error) {
	m, _ := X.Dims()
	train, test, err := preprocessing.TrainTestSplit(m, testSize, seed)
	if err != nil {
		return nil, err
	}
	log.GetLoggerWithName("cli").Debug("dataset split",
		log.SamplesKey, m,
		log.RandomSeedKey, seed,
		"train", len(train),
		"test", len(test),
	)
	return &split{
		XTrain: preprocessing.SelectRows(X, train),
		XTest:  preprocessing.SelectRows(X, test),
		yTrain: column(preprocessing.SelectVec(y, train)),
		yTest:  column(preprocessing.SelectVec(y, test)),
	}, nil
}

func column(v *mat.VecDense) *mat.Dense {
	return mat.NewDense(v.Len(), 1, v.RawVector().Data)
}

func labels(m mat.Matrix) []int {
	r, _ := m.Dims()
	out := make([]int, r)
	for i := range out {
		out[i] = int(m.At(i, 0))
	}
	return out
}

// scale standardizes both halves with statistics of the training half.
func (s *split) scale() error {
	scaler := preprocessing.NewStandardScalerDefault()
	XTrain, err := scaler.FitTransform(s.XTrain)
	if err != nil {
		return err
	}
	XTest, err := scaler.Transform(s.XTest)
	if err != nil {
		return err
	}
	s.XTrain, s.XTest = XTrain, XTest
	return nil
}

// trainBinary fits clf on the split and prints train and test accuracy.
func trainBinary(ctx context.Context, out io.Writer, clf *linear_model.LogisticRegression, s *split) error {
	if err := clf.FitContext(ctx, s.XTrain, s.yTrain); err != nil {
		return err
	}
	trainAcc, err := clf.Score(s.XTrain, s.yTrain)
	if err != nil {
		return err
	}
	testAcc, err := clf.Score(s.XTest, s.yTest)
	if err != nil {
		return err
	}
	history := clf.CostHistory()[0]
	fmt.Fprintf(out, "cost: %.6f -> %.6f over %d iterations\n", history[0], history[len(history)-1], len(history))
	fmt.Fprintf(out, "train accuracy: %.2f%%\n", 100*trainAcc)
	fmt.Fprintf(out, "test accuracy:  %.2f%%\n", 100*testAcc)
	log.GetLoggerWithName("cli").Info("evaluation finished", log.AccuracyKey, testAcc)
	return nil
}

func runBlobs(ctx context.Context, args []string, out io.Writer) error {
	var cfg config
	fs := newFlagSet("blobs", out, &cfg)
	perClass := fs.Int("n", 100, "points per class")
	stddev := fs.Float64("stddev", 1.0, "standard deviation of each blob")
	if err := fs.Parse(args); err != nil {
		return err
	}
	observer, err := cfg.setup(ctx, "blobs")
	if err != nil {
		return err
	}

	X, y, err := datasets.MakeBlobs([][]float64{{-2, -2}, {2, 2}}, *perClass, *stddev, cfg.seed)
	if err != nil {
		return err
	}
	s, err := splitNumeric(X, y, cfg.testSize, cfg.seed)
	if err != nil {
		return err
	}
	clf := cfg.classifier(observer)
	if err := trainBinary(ctx, out, clf, s); err != nil {
		return err
	}
	return cfg.finish(clf, "synthetic blobs")
}

func runData2D(ctx context.Context, args []string, out io.Writer) error {
	var cfg config
	fs := newFlagSet("data2d", out, &cfg)
	file := fs.String("file", "", "delimited file: x1, x2, label per line")
	scale := fs.Bool("scale", true, "standardize features before training")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.NewValidationError("file", "is required", *file)
	}
	observer, err := cfg.setup(ctx, "data2d")
	if err != nil {
		return err
	}

	X, y, err := datasets.LoadDelimitedFile(*file)
	if err != nil {
		return err
	}
	s, err := splitNumeric(X, y, cfg.testSize, cfg.seed)
	if err != nil {
		return err
	}
	if *scale {
		if err := s.scale(); err != nil {
			return err
		}
	}
	clf := cfg.classifier(observer)
	if err := trainBinary(ctx, out, clf, s); err != nil {
		return err
	}
	return cfg.finish(clf, *file)
}

func runDigits(ctx context.Context, args []string, out io.Writer) error {
	var cfg config
	fs := newFlagSet("digits", out, &cfg)
	file := fs.String("file", "", "delimited file: pixel values then the digit label per line")
	classes := fs.Int("classes", 10, "expected number of classes")
	scale := fs.Bool("scale", false, "standardize pixel values before training")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.NewValidationError("file", "is required", *file)
	}
	observer, err := cfg.setup(ctx, "digits")
	if err != nil {
		return err
	}

	X, y, err := datasets.LoadDelimitedFile(*file)
	if err != nil {
		return err
	}
	s, err := splitNumeric(X, y, cfg.testSize, cfg.seed)
	if err != nil {
		return err
	}
	if *scale {
		if err := s.scale(); err != nil {
			return err
		}
	}

	clf := cfg.classifier(observer)
	if err := clf.FitContext(ctx, s.XTrain, s.yTrain); err != nil {
		return err
	}
	found := clf.Classes()
	if len(found) != *classes {
		return errors.NewValidationError("classes", fmt.Sprintf("training data has %d classes", len(found)), *classes)
	}

	pred, err := clf.Predict(s.XTest)
	if err != nil {
		return err
	}
	yTrue, yPred := labels(s.yTest), labels(pred)
	acc, err := metrics.Accuracy(yTrue, yPred)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "one-vs-all over %d classes, lambda %g\n", len(found), cfg.lambda)
	fmt.Fprintf(out, "test accuracy: %.2f%%\n", 100*acc)

	index := make(map[int]int, len(found))
	for i, c := range found {
		index[c] = i
	}
	for i := range yTrue {
		ti, ok := index[yTrue[i]]
		if !ok {
			return errors.NewValueError("digits", fmt.Sprintf("test label %d never seen in training", yTrue[i]))
		}
		yTrue[i], yPred[i] = ti, index[yPred[i]]
	}
	cm, err := metrics.ConfusionMatrix(yTrue, yPred, len(found))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "confusion matrix (rows: true %v, columns: predicted):\n%v\n", found, mat.Formatted(cm, mat.Squeeze()))
	return cfg.finish(clf, "digits one-vs-all")
}

func runSpam(ctx context.Context, args []string, out io.Writer) error {
	var cfg config
	fs := newFlagSet("spam", out, &cfg)
	file := fs.String("file", "", "tab-separated SMS collection: ham|spam, text")
	maxFeatures := fs.Int("max-features", preprocessing.DefaultMaxFeatures, "vocabulary size")
	top := fs.Int("top", 15, "number of top weighted tokens to print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.NewValidationError("file", "is required", *file)
	}
	observer, err := cfg.setup(ctx, "spam")
	if err != nil {
		return err
	}

	docs, y, err := datasets.LoadSMSFile(*file)
	if err != nil {
		return err
	}
	train, test, err := preprocessing.TrainTestSplit(len(docs), cfg.testSize, cfg.seed)
	if err != nil {
		return err
	}
	trainDocs := preprocessing.SelectStrings(docs, train)
	vec, err := preprocessing.FitVectorizer(trainDocs, preprocessing.WithMaxFeatures(*maxFeatures))
	if err != nil {
		return err
	}
	XTrain, err := vec.Transform(trainDocs)
	if err != nil {
		return err
	}
	XTest, err := vec.Transform(preprocessing.SelectStrings(docs, test))
	if err != nil {
		return err
	}
	s := &split{
		XTrain: XTrain,
		XTest:  XTest,
		yTrain: column(preprocessing.SelectVec(y, train)),
		yTest:  column(preprocessing.SelectVec(y, test)),
	}

	clf := cfg.classifier(observer)
	if err := trainBinary(ctx, out, clf, s); err != nil {
		return err
	}
	pred, err := clf.Predict(s.XTest)
	if err != nil {
		return err
	}
	yTrue, yPred := labels(s.yTest), labels(pred)
	precision, err := metrics.Precision(yTrue, yPred)
	if err != nil {
		return err
	}
	recall, err := metrics.Recall(yTrue, yPred)
	if err != nil {
		return err
	}
	f1, err := metrics.F1Score(yTrue, yPred)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "spam precision: %.4f recall: %.4f f1: %.4f\n", precision, recall, f1)

	weights, err := report.TopWeights(clf.Theta().RowView(0), vec.Vocabulary(), *top)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "top spam tokens:")
	for _, tw := range weights {
		fmt.Fprintf(out, "  %-15s %.4f\n", tw.Token, tw.Weight)
	}
	return cfg.finish(clf, "spam")
}
