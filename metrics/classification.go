// Package metrics provides classification metrics over integer labels.
package metrics

import (
	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func checkPair(op string, yTrue, yPred []int) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty label slice")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred []int) (float64, error) {
	if err := checkPair("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// binaryCounts returns true positives, false positives and false negatives
// for the positive class 1.
func binaryCounts(yTrue, yPred []int) (tp, fp, fn int) {
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1:
			fp++
		case yTrue[i] == 1:
			fn++
		}
	}
	return tp, fp, fn
}

// ratio returns num/den, or 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Precision は陽性クラス1の適合率 TP/(TP+FP) を計算する
// 陽性予測が一つもない場合は0を返す。
func Precision(yTrue, yPred []int) (float64, error) {
	if err := checkPair("Precision", yTrue, yPred); err != nil {
		return 0, err
	}
	tp, fp, _ := binaryCounts(yTrue, yPred)
	return ratio(tp, tp+fp), nil
}

// Recall は陽性クラス1の再現率 TP/(TP+FN) を計算する
func Recall(yTrue, yPred []int) (float64, error) {
	if err := checkPair("Recall", yTrue, yPred); err != nil {
		return 0, err
	}
	tp, _, fn := binaryCounts(yTrue, yPred)
	return ratio(tp, tp+fn), nil
}

// F1Score は適合率と再現率の調和平均を計算する
func F1Score(yTrue, yPred []int) (float64, error) {
	if err := checkPair("F1Score", yTrue, yPred); err != nil {
		return 0, err
	}
	tp, fp, fn := binaryCounts(yTrue, yPred)
	return ratio(2*tp, 2*tp+fp+fn), nil
}

// ConfusionMatrix returns a k x k matrix whose entry (i, j) counts the
// examples of true class i predicted as class j.
func ConfusionMatrix(yTrue, yPred []int, k int) (*mat.Dense, error) {
	if k < 1 {
		return nil, errors.NewValidationError("classes", "must be at least 1", k)
	}
	if err := checkPair("ConfusionMatrix", yTrue, yPred); err != nil {
		return nil, err
	}
	cm := mat.NewDense(k, k, nil)
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= k || p < 0 || p >= k {
			return nil, errors.NewValidationError("labels", "must be in [0, k)", [2]int{t, p})
		}
		cm.Set(t, p, cm.At(t, p)+1)
	}
	return cm, nil
}
