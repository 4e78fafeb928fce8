package stats

import (
	"math"
	"sort"
)

// DropMissing returns the values of xs that are not NaN, preserving order.
func DropMissing(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		out = append(out, x)
	}
	return out
}

// RoundInts rounds every value half-to-even and converts it to int.
// Non-finite or out-of-range values produce a *ConversionError.
func RoundInts(xs []float64) ([]int, error) {
	out := make([]int, len(xs))
	for i, x := range xs {
		r := math.RoundToEven(x)
		if math.IsNaN(r) || math.IsInf(r, 0) || r > math.MaxInt64 || r < math.MinInt64 {
			return nil, &ConversionError{Value: x}
		}
		out[i] = int(r)
	}
	return out, nil
}

// Distinct returns the distinct values of xs in order of first appearance.
func Distinct(xs []int) []int {
	seen := make(map[int]struct{}, len(xs))
	out := make([]int, 0)
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return quantile(cp, 0.5)
}

// quantile uses linear interpolation between closest ranks on sorted input.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Stars maps a p-value to the conventional significance marker.
func Stars(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return ""
	}
}
