package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Pearson returns the Pearson correlation coefficient of x and y.
// Inputs must have equal, non-zero length. A zero-variance input yields NaN.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return math.NaN(), ErrLengthMismatch
	}
	if len(x) == 0 {
		return math.NaN(), ErrEmpty
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return r, nil
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, nil
}
