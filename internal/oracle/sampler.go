package oracle

import (
	"fmt"

	"github.com/orbit-cal/calibration-core/pkg/utils"
)

// Sampler turns a true expectation value into a reported measurement. The
// choice between exact and finite-shot readout is a strategy at the oracle
// boundary: against real hardware only the sampled arm exists, the exact arm
// is a testing convenience.
type Sampler interface {
	Name() string
	Sample(rng *utils.RandSource, trueValue float64, shots int) Measurement
}

// ExactSampler reports the exact expectation with zero error. The shot count
// is carried through for bookkeeping symmetry with sampled readout.
type ExactSampler struct{}

func (ExactSampler) Name() string {
	return "exact"
}

func (ExactSampler) Sample(rng *utils.RandSource, trueValue float64, shots int) Measurement {
	return Measurement{Mean: trueValue, StdErr: 0, Shots: shots}
}

// ShotSampler simulates finite-shot readout: a binomial draw of the
// configured shot count around the true expectation, reported with the
// sample standard error.
type ShotSampler struct{}

func (ShotSampler) Name() string {
	return "sampled"
}

func (ShotSampler) Sample(rng *utils.RandSource, trueValue float64, shots int) Measurement {
	k := rng.BinomialInt(shots, trueValue)
	return Measurement{
		Mean:   float64(k) / float64(shots),
		StdErr: utils.BernoulliStdErr(k, shots),
		Shots:  shots,
	}
}

// SamplerByName resolves a measurement mode name from configuration.
func SamplerByName(name string) (Sampler, error) {
	switch name {
	case "exact":
		return ExactSampler{}, nil
	case "sampled":
		return ShotSampler{}, nil
	default:
		return nil, fmt.Errorf("unknown measurement mode %q (must be exact or sampled)", name)
	}
}
