package calibrate

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNewGaussianESValidates(t *testing.T) {
	if _, err := NewGaussianES(nil, 0.1, 5, 1); err == nil {
		t.Fatalf("expected error for empty initial vector")
	}
	if _, err := NewGaussianES([]float64{1}, 0, 5, 1); err == nil {
		t.Fatalf("expected error for zero spread")
	}
	if _, err := NewGaussianES([]float64{1}, -0.1, 5, 1); err == nil {
		t.Fatalf("expected error for negative spread")
	}
	if _, err := NewGaussianES([]float64{1}, 0.1, 0, 1); err == nil {
		t.Fatalf("expected error for zero population")
	}
}

func TestGaussianESFirstSampleIncludesInitial(t *testing.T) {
	initial := []float64{0.5, -1.0, -53.0}
	s, err := NewGaussianES(initial, 0.1, 4, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pop := s.Sample()
	if len(pop) != 4 {
		t.Fatalf("expected population of 4, got %d", len(pop))
	}
	if !reflect.DeepEqual(pop[0], initial) {
		t.Fatalf("first candidate of the first generation should be the exact initial vector, got %v", pop[0])
	}
	for i := 1; i < len(pop); i++ {
		if reflect.DeepEqual(pop[i], initial) {
			t.Fatalf("candidate %d should be a perturbed draw", i)
		}
		if len(pop[i]) != len(initial) {
			t.Fatalf("candidate %d has dimension %d, want %d", i, len(pop[i]), len(initial))
		}
	}

	// Later generations no longer pin the initial vector.
	second := s.Sample()
	if reflect.DeepEqual(second[0], initial) {
		t.Fatalf("second generation should not repeat the exact initial vector")
	}
}

func TestGaussianESSampleDeterministic(t *testing.T) {
	a, err := NewGaussianES([]float64{1, 2}, 0.2, 6, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewGaussianES([]float64{1, 2}, 0.2, 6, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a.Sample(), b.Sample()) {
		t.Fatalf("same seed should draw the same population")
	}
}

func TestGaussianESUpdateRefitsToElite(t *testing.T) {
	s, err := NewGaussianES([]float64{10}, 0.5, 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Elite fraction is popSize/2 = 2; the two best candidates are 0 and 1.
	candidates := []Candidate{
		{Index: 0, Vector: []float64{0}, Goal: 0.0},
		{Index: 1, Vector: []float64{1}, Goal: 0.1},
		{Index: 2, Vector: []float64{2}, Goal: 0.2},
		{Index: 3, Vector: []float64{3}, Goal: 0.3},
	}
	s.Update(candidates)
	mean := s.Mean()
	if math.Abs(mean[0]-0.5) > 1e-12 {
		t.Fatalf("mean should refit to the elite average 0.5, got %v", mean[0])
	}
}

func TestGaussianESUpdateIgnoresFailures(t *testing.T) {
	s, err := NewGaussianES([]float64{10}, 0.5, 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failed := errors.New("boom")
	candidates := []Candidate{
		{Index: 0, Vector: []float64{-100}, Goal: math.Inf(1), Err: failed},
		{Index: 1, Vector: []float64{2}, Goal: 0.1},
		{Index: 2, Vector: []float64{4}, Goal: 0.2},
		{Index: 3, Vector: []float64{-100}, Goal: math.Inf(1), Err: failed},
	}
	s.Update(candidates)
	mean := s.Mean()
	if math.Abs(mean[0]-3) > 1e-12 {
		t.Fatalf("failed candidates should be excluded from the refit, got mean %v", mean[0])
	}
}

func TestGaussianESUpdateAllFailedKeepsDistribution(t *testing.T) {
	s, err := NewGaussianES([]float64{10}, 0.5, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failed := errors.New("boom")
	s.Update([]Candidate{
		{Index: 0, Vector: []float64{0}, Goal: math.Inf(1), Err: failed},
		{Index: 1, Vector: []float64{1}, Goal: math.Inf(1), Err: failed},
	})
	if got := s.Mean(); got[0] != 10 {
		t.Fatalf("an all-failed generation should leave the mean unchanged, got %v", got[0])
	}
}

func TestCandidateFailed(t *testing.T) {
	if (Candidate{Goal: 1}).Failed() {
		t.Fatalf("candidate without an error should not be failed")
	}
	if !(Candidate{Err: errors.New("x")}).Failed() {
		t.Fatalf("candidate with an error should be failed")
	}
}
