// Package target defines the target-system boundary the calibration loop
// drives, plus a simulated single-qubit model backend.
package target

import (
	"github.com/orbit-cal/calibration-core/internal/gate"
)

// System is the black box being calibrated. Implementations hold the control
// parameter state the optimizer mutates.
//
// Fork exists so that concurrent candidate evaluations never race on one
// shared parameter state: each oracle call forks its own snapshot, applies
// its candidate and measures against that copy.
type System interface {
	// Labels returns the declared qubit-channel state labels.
	Labels() []string

	// ApplyParameters partially updates control parameters: only the named
	// parameters are touched, everything else keeps its prior value.
	ApplyParameters(values map[string]float64) error

	// Fork returns an independent copy of the system's parameter state.
	Fork() System

	// Propagators computes the unitary for each requested gate identifier
	// under the current parameter state. This is the expensive per-gate
	// work; callers deduplicate before asking.
	Propagators(gateIDs []string) (map[string]gate.Matrix, error)

	// Populations returns the per-label expectation values, each in [0,1],
	// after applying u to the system's initial state.
	Populations(u gate.Matrix) map[string]float64
}
