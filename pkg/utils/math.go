package utils

import (
	"math"
	"sort"
)

// Mean calculates the arithmetic mean of values. Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance calculates the population variance of values.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// StdDev calculates the population standard deviation of values.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// SampleStdDev calculates the Bessel-corrected sample standard deviation.
// Returns 0 when fewer than two values are given.
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	return StdDev(values) * math.Sqrt(float64(n)/float64(n-1))
}

// BernoulliStdErr returns the standard error of the mean of n 0/1 draws of
// which k were 1: sampleStdDev / sqrt(n).
func BernoulliStdErr(k, n int) float64 {
	if n < 2 {
		return 0
	}
	sampleVar := float64(k) * float64(n-k) / (float64(n) * float64(n-1))
	return math.Sqrt(sampleVar / float64(n))
}

// ClampFloat64 clamps value into [min, max].
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Percentile calculates the given percentile (0-100) of values using linear
// interpolation between closest ranks.
func Percentile(values []float64, percentile float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := (percentile / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// MinFloat64s returns the minimum of values and its index, or (+Inf, -1) for
// an empty slice.
func MinFloat64s(values []float64) (float64, int) {
	best := math.Inf(1)
	idx := -1
	for i, v := range values {
		if v < best {
			best = v
			idx = i
		}
	}
	return best, idx
}
