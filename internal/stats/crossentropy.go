package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// probEpsilon bounds reference probabilities away from 0 and 1.
const probEpsilon = 1e-10

// CrossEntropy returns H(p_truth, p_ref) in bits between the empirical value
// distributions of two integer sequences.
//
// Both distributions are restricted to the values observed in ref and
// renormalized before the sum. When the result is not defined the returned
// error is an *UndefinedError carrying the reason and the value is NaN.
func CrossEntropy(truth, ref []int) (float64, error) {
	if u := Distinct(truth); len(u) < 2 {
		return math.NaN(), &UndefinedError{Reason: fmt.Sprintf("Column 1 only has one unique value: %v", u)}
	}
	if u := Distinct(ref); len(u) < 2 {
		return math.NaN(), &UndefinedError{Reason: fmt.Sprintf("Column 2 only has one unique value: %v", u)}
	}

	px := relativeFrequencies(truth)
	py := relativeFrequencies(ref)

	keys := make([]int, 0, len(px)+len(py))
	for k := range px {
		keys = append(keys, k)
	}
	for k := range py {
		if _, ok := px[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)

	var p, q []float64
	for _, k := range keys {
		if py[k] > 0 {
			p = append(p, px[k])
			q = append(q, py[k])
		}
	}
	if len(q) == 0 {
		return math.NaN(), &UndefinedError{Reason: "No overlapping nonzero values between columns."}
	}
	sp, sq := floats.Sum(p), floats.Sum(q)
	if sp == 0 || sq == 0 {
		return math.NaN(), &UndefinedError{Reason: "Zero sum after filtering probabilities."}
	}
	floats.Scale(1/sp, p)
	floats.Scale(1/sq, q)
	for i, v := range q {
		q[i] = math.Min(math.Max(v, probEpsilon), 1-probEpsilon)
	}
	return stat.CrossEntropy(p, q) / math.Ln2, nil
}

func relativeFrequencies(xs []int) map[int]float64 {
	counts := make(map[int]float64)
	for _, x := range xs {
		counts[x]++
	}
	n := float64(len(xs))
	for k := range counts {
		counts[k] /= n
	}
	return counts
}
