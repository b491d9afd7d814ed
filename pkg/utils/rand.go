package utils

import (
	"math/rand"
	"time"
)

// RandSource is a seeded random number generator shared by the sequence
// generator, the measurement sampler and the search strategy. It is not
// safe for concurrent use; give each worker its own source.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a random source. A zero seed falls back to the
// current time, which makes the run non-reproducible.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{rng: rand.New(rand.NewSource(seed))}
}

// Split derives an independent source from this one. Used to hand each
// parallel evaluation its own RNG while keeping the run seed-deterministic.
func (r *RandSource) Split() *RandSource {
	return &RandSource{rng: rand.New(rand.NewSource(r.rng.Int63()))}
}

// Float64 returns a random float64 in [0.0, 1.0).
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n).
func (r *RandSource) Intn(n int) int {
	return r.rng.Intn(n)
}

// Perm returns a random permutation of [0, n).
func (r *RandSource) Perm(n int) []int {
	return r.rng.Perm(n)
}

// NormFloat64 returns a normally distributed value with the given mean and
// standard deviation.
func (r *RandSource) NormFloat64(mean, stddev float64) float64 {
	return r.rng.NormFloat64()*stddev + mean
}

// UniformFloat64 returns a uniformly distributed value in [min, max).
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// BinomialInt returns the number of successes in n Bernoulli trials with
// success probability p. Used to simulate finite-shot measurement noise.
func (r *RandSource) BinomialInt(n int, p float64) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	k := 0
	for i := 0; i < n; i++ {
		if r.rng.Float64() < p {
			k++
		}
	}
	return k
}
