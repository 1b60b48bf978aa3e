package errors

import (
	"math"
)

// maxReportedValues bounds how many offending values are copied into a
// NumericalInstabilityError.
const maxReportedValues = 10

// CheckMatrix checks all values in a matrix for numerical instability.
func CheckMatrix(operation string, matrix interface{ At(int, int) float64 }, rows, cols, iteration int) error {
	var unstableValues []float64

	for i := 0; i < rows && len(unstableValues) < maxReportedValues; i++ {
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if !isFinite(v) {
				unstableValues = append(unstableValues, v)
				if len(unstableValues) >= maxReportedValues {
					break
				}
			}
		}
	}

	if len(unstableValues) > 0 {
		return NewNumericalInstabilityError(operation, unstableValues, iteration)
	}

	return nil
}

// CheckVector checks all values of a vector for numerical instability.
func CheckVector(operation string, vector interface{ AtVec(int) float64 }, n, iteration int) error {
	var unstableValues []float64
	for i := 0; i < n; i++ {
		if v := vector.AtVec(i); !isFinite(v) {
			unstableValues = append(unstableValues, v)
			if len(unstableValues) >= maxReportedValues {
				break
			}
		}
	}
	if len(unstableValues) > 0 {
		return NewNumericalInstabilityError(operation, unstableValues, iteration)
	}
	return nil
}

// ClipValue clips a value to the range [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
