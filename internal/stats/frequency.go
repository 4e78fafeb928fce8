package stats

import "math"

// Frequency is one row of a value frequency table.
type Frequency struct {
	Value   float64 `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Frequencies counts each distinct value in first-appearance order and
// reports its share of the non-missing total as a percentage.
func Frequencies(values []float64) []Frequency {
	idx := make(map[float64]int)
	var out []Frequency
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		n++
		if i, ok := idx[v]; ok {
			out[i].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, Frequency{Value: v, Count: 1})
	}
	for i := range out {
		out[i].Percent = float64(out[i].Count) / float64(n) * 100
	}
	return out
}
