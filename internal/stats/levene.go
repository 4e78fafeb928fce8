package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Levene runs the median-centred (Brown-Forsythe) Levene test for equal
// variances across groups and returns the W statistic and its p-value.
func Levene(groups ...[]float64) (w, p float64, err error) {
	k := len(groups)
	if k < 2 {
		return math.NaN(), math.NaN(), fmt.Errorf("levene: need at least 2 groups, got %d", k)
	}
	devs := make([][]float64, k)
	means := make([]float64, k)
	var total int
	var grand float64
	for i, g := range groups {
		if len(g) == 0 {
			return math.NaN(), math.NaN(), fmt.Errorf("levene: group %d: %w", i+1, ErrEmpty)
		}
		med := median(g)
		z := make([]float64, len(g))
		for j, v := range g {
			z[j] = math.Abs(v - med)
		}
		devs[i] = z
		means[i] = stat.Mean(z, nil)
		total += len(z)
		for _, v := range z {
			grand += v
		}
	}
	grand /= float64(total)
	if total-k <= 0 {
		return math.NaN(), math.NaN(), nil
	}

	var between, within float64
	for i, z := range devs {
		d := means[i] - grand
		between += float64(len(z)) * d * d
		for _, v := range z {
			e := v - means[i]
			within += e * e
		}
	}
	w = float64(total-k) / float64(k-1) * between / within
	switch {
	case math.IsNaN(w):
		return w, math.NaN(), nil
	case math.IsInf(w, 1):
		return w, 0, nil
	}
	f := distuv.F{D1: float64(k - 1), D2: float64(total - k)}
	return w, f.Survival(w), nil
}
