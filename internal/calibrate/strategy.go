// Package calibrate implements the closed-loop optimizer driver: a
// generation loop around a pluggable population-based search strategy and a
// black-box evaluation function.
package calibrate

import (
	"fmt"
	"math"
	"sort"

	"github.com/orbit-cal/calibration-core/pkg/utils"
)

// Candidate is one evaluated parameter vector within a generation. A failed
// evaluation carries its error and a +Inf goal so it ranks last.
type Candidate struct {
	Index  int
	Vector []float64
	Goal   float64
	Err    error
}

// Failed reports whether the candidate's evaluation errored.
func (c Candidate) Failed() bool {
	return c.Err != nil
}

// Strategy is a population-based stochastic search: draw a population, feed
// back the scored candidates. The driver never assumes a concrete algorithm.
type Strategy interface {
	// Name returns the strategy name.
	Name() string
	// Sample draws the next generation of candidate vectors.
	Sample() [][]float64
	// Update feeds a complete generation's scored candidates back into the
	// search distribution. Candidates arrive in sample order.
	Update(candidates []Candidate)
}

// GaussianES is the reference strategy: a diagonal Gaussian evolution
// strategy. Each generation is drawn around the current mean; the mean and
// per-dimension spread are refit to the elite fraction of the generation.
type GaussianES struct {
	mean     []float64
	sigma    []float64
	popSize  int
	elite    int
	minSigma float64
	rng      *utils.RandSource
	sampled  bool
}

// NewGaussianES creates the strategy centered on initial with a uniform
// starting spread. The very first generation includes the exact initial
// vector as its first candidate, so the starting point is always evaluated.
func NewGaussianES(initial []float64, spread float64, popSize int, seed int64) (*GaussianES, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("initial vector cannot be empty")
	}
	if spread <= 0 {
		return nil, fmt.Errorf("spread must be positive, got %f", spread)
	}
	if popSize <= 0 {
		return nil, fmt.Errorf("population size must be positive, got %d", popSize)
	}
	mean := make([]float64, len(initial))
	copy(mean, initial)
	sigma := make([]float64, len(initial))
	for i := range sigma {
		sigma[i] = spread
	}
	elite := popSize / 2
	if elite < 1 {
		elite = 1
	}
	return &GaussianES{
		mean:     mean,
		sigma:    sigma,
		popSize:  popSize,
		elite:    elite,
		minSigma: spread * 1e-3,
		rng:      utils.NewRandSource(seed),
	}, nil
}

func (s *GaussianES) Name() string {
	return "gaussian_es"
}

// Sample draws popSize candidate vectors from the current distribution.
func (s *GaussianES) Sample() [][]float64 {
	pop := make([][]float64, s.popSize)
	start := 0
	if !s.sampled {
		pop[0] = append([]float64(nil), s.mean...)
		start = 1
		s.sampled = true
	}
	for i := start; i < s.popSize; i++ {
		v := make([]float64, len(s.mean))
		for d := range v {
			v[d] = s.rng.NormFloat64(s.mean[d], s.sigma[d])
		}
		pop[i] = v
	}
	return pop
}

// Update refits mean and sigma to the elite candidates of the generation.
// Failed candidates rank last through their +Inf goal; a generation with no
// successful candidate leaves the distribution unchanged.
func (s *GaussianES) Update(candidates []Candidate) {
	ranked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Failed() && !math.IsInf(c.Goal, 1) && len(c.Vector) == len(s.mean) {
			ranked = append(ranked, c)
		}
	}
	if len(ranked) == 0 {
		return
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Goal < ranked[j].Goal
	})
	elite := s.elite
	if elite > len(ranked) {
		elite = len(ranked)
	}
	ranked = ranked[:elite]

	for d := range s.mean {
		values := make([]float64, len(ranked))
		for i, c := range ranked {
			values[i] = c.Vector[d]
		}
		s.mean[d] = utils.Mean(values)
		sigma := utils.SampleStdDev(values)
		if sigma < s.minSigma {
			sigma = s.minSigma
		}
		s.sigma[d] = sigma
	}
}

// Mean returns a copy of the current distribution mean.
func (s *GaussianES) Mean() []float64 {
	return append([]float64(nil), s.mean...)
}
