package stats

import (
	"fmt"
	"math"
	"testing"
)

func TestSampleEntropy_PeriodicIsZero(t *testing.T) {
	data := []float64{1, 2, 1, 2, 1, 2, 1, 2}
	got, err := SampleEntropy(data, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 || math.Signbit(got) {
		t.Fatalf("SampEn = %v, want +0", got)
	}
	if s := fmt.Sprintf("%.4f", got); s != "0.0000" {
		t.Fatalf("formatted SampEn = %q, want 0.0000", s)
	}
}

func TestSampleEntropy_NoMatchesIsInf(t *testing.T) {
	got, err := SampleEntropy([]float64{1, 2, 3, 4, 5}, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(got, 1) {
		t.Fatalf("SampEn = %v, want +Inf", got)
	}
}

func TestSampleEntropy_HandCounted(t *testing.T) {
	// m=1, r=0.5: templates are the first 5 values.
	// Length-1 matches: (0,2) (0,4) (2,4) (1,3) = 4; extended matches: (0,2) (1,3) = 2.
	data := []float64{1, 2, 1, 2, 1, 3}
	got, err := SampleEntropy(data, 1, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := -math.Log(2.0 / 4.0)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("SampEn = %v, want %v", got, want)
	}
}

func TestSampleEntropy_Validation(t *testing.T) {
	if _, err := SampleEntropy([]float64{1, 2, 3}, 0, 0); err == nil {
		t.Fatalf("expected error for m=0")
	}
	if _, err := SampleEntropy([]float64{1, 2}, 1, 0); err == nil {
		t.Fatalf("expected error for too short input")
	}
}

func TestTolerance_DefaultFactor(t *testing.T) {
	got := Tolerance([]float64{1, 2, 3, 4, 5}, 0)
	want := 0.2 * math.Sqrt(2)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("Tolerance = %v, want %v", got, want)
	}
}
