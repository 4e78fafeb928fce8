package stats

import (
	"errors"
	"fmt"
	"math"
	"strings"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"
)

// Mode selects the two-sample t-test design.
type Mode int

const (
	// Independent compares two unrelated samples. Levene's test picks
	// between the pooled and Welch variants.
	Independent Mode = iota
	// Paired compares matched observations.
	Paired
)

func (m Mode) String() string {
	if m == Paired {
		return "paired"
	}
	return "independent"
}

// ParseMode accepts "independent" or "paired" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "independent", "ind":
		return Independent, nil
	case "paired", "rel":
		return Paired, nil
	}
	return Independent, fmt.Errorf("unknown t-test mode %q (use independent|paired)", s)
}

// Tail selects how the two-sided p-value is reported.
type Tail int

const (
	TwoTailed Tail = iota
	OneTailed
)

func (t Tail) String() string {
	if t == OneTailed {
		return "one"
	}
	return "two"
}

// ParseTail accepts "two" or "one" (case-insensitive).
func ParseTail(s string) (Tail, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "two", "two-tailed", "2":
		return TwoTailed, nil
	case "one", "one-tailed", "1":
		return OneTailed, nil
	}
	return TwoTailed, fmt.Errorf("unknown tail %q (use two|one)", s)
}

// varianceThreshold is the Levene p-value above which variances are treated as equal.
const varianceThreshold = 0.05

// TTestResult holds the outcome of TTest.
type TTestResult struct {
	Mode Mode
	Tail Tail

	T    float64
	DoF  float64
	PTwo float64
	// P is the reported p-value after applying Tail.
	P        float64
	TailDesc string

	// LeveneP is NaN in paired mode.
	LeveneP  float64
	EqualVar bool

	NA, NB       int
	MeanA, MeanB float64
	// SDA and SDB are population standard deviations.
	SDA, SDB float64
}

// VarianceNote describes the Levene decision, or "" in paired mode.
func (r *TTestResult) VarianceNote() string {
	if r.Mode == Paired {
		return ""
	}
	if r.EqualVar {
		return "equal variances"
	}
	return "unequal variances"
}

// Significance returns the star marker for P.
func (r *TTestResult) Significance() string { return Stars(r.P) }

// TTest compares samples a and b.
//
// Degenerate inputs with zero variance report t=0, p=1 when the means agree
// and t=±Inf, p=0 otherwise. In paired mode samples of different length
// return an error.
func TTest(a, b []float64, mode Mode, tail Tail) (*TTestResult, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("t-test: %w", ErrEmpty)
	}
	res := &TTestResult{Mode: mode, Tail: tail, NA: len(a), NB: len(b), LeveneP: math.NaN()}
	res.MeanA, res.SDA = stat.PopMeanStdDev(a, nil)
	res.MeanB, res.SDB = stat.PopMeanStdDev(b, nil)

	var (
		tr  *mstats.TTestResult
		err error
	)
	switch mode {
	case Independent:
		_, lp, lerr := Levene(a, b)
		if lerr != nil {
			return nil, fmt.Errorf("t-test: %w", lerr)
		}
		res.LeveneP = lp
		res.EqualVar = lp > varianceThreshold
		sa, sb := &mstats.Sample{Xs: a}, &mstats.Sample{Xs: b}
		if res.EqualVar {
			tr, err = mstats.TwoSampleTTest(sa, sb, mstats.LocationDiffers)
		} else {
			tr, err = mstats.TwoSampleWelchTTest(sa, sb, mstats.LocationDiffers)
		}
	case Paired:
		tr, err = mstats.PairedTTest(a, b, 0, mstats.LocationDiffers)
	default:
		return nil, fmt.Errorf("t-test: unknown mode %d", mode)
	}

	switch {
	case errors.Is(err, mstats.ErrZeroVariance):
		res.T, res.PTwo = degenerate(res.MeanA - res.MeanB)
		res.DoF = math.NaN()
	case err != nil:
		return nil, fmt.Errorf("t-test (%s): %w", mode, err)
	default:
		res.T, res.DoF, res.PTwo = tr.T, tr.DoF, tr.P
	}
	res.P, res.TailDesc = applyTail(res.T, res.PTwo, res.MeanA, res.MeanB, tail)
	return res, nil
}

func degenerate(diff float64) (t, p float64) {
	switch {
	case diff > 0:
		return math.Inf(1), 0
	case diff < 0:
		return math.Inf(-1), 0
	default:
		return 0, 1
	}
}

// applyTail converts a two-sided p-value. For one-tailed tests the direction
// follows the sample means: the two-sided p is halved when t agrees with it.
func applyTail(t, pTwo, meanA, meanB float64, tail Tail) (float64, string) {
	if tail == TwoTailed {
		return pTwo, "two-tailed"
	}
	desc, agree := "one-tailed (A < B)", t < 0
	if meanA > meanB {
		desc, agree = "one-tailed (A > B)", t > 0
	}
	if agree {
		return pTwo / 2, desc
	}
	return 1 - pTwo/2, desc
}
