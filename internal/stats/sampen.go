package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultToleranceFactor scales the population standard deviation into the
// sample entropy matching tolerance.
const DefaultToleranceFactor = 0.2

// Tolerance returns factor times the population standard deviation of data.
// A non-positive factor selects DefaultToleranceFactor.
func Tolerance(data []float64, factor float64) float64 {
	if factor <= 0 {
		factor = DefaultToleranceFactor
	}
	_, sd := stat.PopMeanStdDev(data, nil)
	return factor * sd
}

// SampleEntropy computes SampEn(m, r) of data.
//
// Template vectors of length m and m+1 are both drawn from the first N-m
// starting positions; two templates match when their Chebyshev distance is
// strictly below r. The result is -ln(A/B) where B counts matching pairs of
// length m and A of length m+1. When either count is zero the result is +Inf.
// A non-positive r selects Tolerance(data, DefaultToleranceFactor).
func SampleEntropy(data []float64, m int, r float64) (float64, error) {
	if m < 1 {
		return math.NaN(), fmt.Errorf("embedding dimension must be >= 1, got %d", m)
	}
	n := len(data)
	if n < m+2 {
		return math.NaN(), fmt.Errorf("sample entropy needs at least %d values, got %d", m+2, n)
	}
	if r <= 0 {
		r = Tolerance(data, DefaultToleranceFactor)
	}

	templates := n - m
	var matchM, matchM1 int
	for i := 0; i < templates-1; i++ {
		for j := i + 1; j < templates; j++ {
			if !withinTolerance(data[i:i+m], data[j:j+m], r) {
				continue
			}
			matchM++
			if math.Abs(data[i+m]-data[j+m]) < r {
				matchM1++
			}
		}
	}
	if matchM == 0 || matchM1 == 0 {
		return math.Inf(1), nil
	}
	return math.Log(float64(matchM) / float64(matchM1)), nil
}

func withinTolerance(a, b []float64, r float64) bool {
	for k := range a {
		if math.Abs(a[k]-b[k]) >= r {
			return false
		}
	}
	return true
}
