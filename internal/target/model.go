package target

import (
	"fmt"
	"math"

	"github.com/orbit-cal/calibration-core/internal/envelope"
	"github.com/orbit-cal/calibration-core/internal/gate"
	"github.com/orbit-cal/calibration-core/internal/parammap"
)

// References holds the calibrated pulse parameter values of the model. They
// define the optimum the closed loop should recover: a gate driven exactly
// at its references produces its nominal unitary.
type References struct {
	Amp           float64
	Delta         float64
	FreqOffsetMHz float64
	XYAngle       float64
}

// ModelConfig configures the simulated single-qubit backend.
type ModelConfig struct {
	// Label is the observed qubit-channel state label, e.g. "Q1".
	Label string
	// Qubit is the index this model reads out of compound gate identifiers.
	Qubit int
	// Channel is the drive channel identifier used in parameter names.
	Channel string
	// Envelope names the pulse envelope component, e.g. "gaussian_nonorm".
	Envelope string
	// EnvelopeParams are the fixed shape parameters (t_final, sigma, ...).
	EnvelopeParams envelope.Params
	// DragWeight scales how strongly a detuned DRAG coefficient tilts the
	// rotation axis out of the XY plane.
	DragWeight float64
	// References are the calibrated parameter values.
	References References
}

const areaSteps = 200

// Model is a simulated single-qubit target system. Control parameters are
// stored per fully-qualified parameter name; gates whose parameters were
// never touched stay at their calibrated references and therefore act
// ideally.
type Model struct {
	cfg    ModelConfig
	area   float64 // envelope area, fixed by the shape parameters
	params map[string]float64
}

// NewModel builds a model with every instruction parameter initialized to
// its calibrated reference.
func NewModel(cfg ModelConfig) (*Model, error) {
	if cfg.Label == "" {
		return nil, fmt.Errorf("model label cannot be empty")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("model channel cannot be empty")
	}
	if cfg.References.Amp == 0 {
		return nil, fmt.Errorf("reference amp cannot be zero")
	}
	tFinal, ok := cfg.EnvelopeParams["t_final"]
	if !ok || tFinal <= 0 {
		return nil, fmt.Errorf("envelope parameter t_final must be positive")
	}
	area, err := envelope.Area(cfg.Envelope, cfg.EnvelopeParams, tFinal, areaSteps)
	if err != nil {
		return nil, fmt.Errorf("model envelope: %w", err)
	}

	m := &Model{cfg: cfg, area: area, params: make(map[string]float64)}
	for _, e := range gate.Alphabet() {
		if e.Name == gate.NameID {
			continue
		}
		instr := fmt.Sprintf("%s[%d]", e.Name, cfg.Qubit)
		m.params[m.key(instr, "amp")] = cfg.References.Amp
		m.params[m.key(instr, "delta")] = cfg.References.Delta
		m.params[m.key(instr, "freq_offset")] = cfg.References.FreqOffsetMHz
		m.params[m.key(instr, "xy_angle")] = cfg.References.XYAngle
	}
	return m, nil
}

func (m *Model) key(instruction, attribute string) string {
	return parammap.ParameterID{
		Instruction: instruction,
		Channel:     m.cfg.Channel,
		Envelope:    m.cfg.Envelope,
		Attribute:   attribute,
	}.String()
}

// Labels returns the declared state labels. The model observes one qubit.
func (m *Model) Labels() []string {
	return []string{m.cfg.Label}
}

// ApplyParameters partially updates the parameter state. Naming a parameter
// the model does not own is an error rather than a silent no-op.
func (m *Model) ApplyParameters(values map[string]float64) error {
	for name := range values {
		if _, ok := m.params[name]; !ok {
			return fmt.Errorf("unknown parameter %q", name)
		}
	}
	for name, v := range values {
		m.params[name] = v
	}
	return nil
}

// Fork returns an independent copy of the model's parameter state.
func (m *Model) Fork() System {
	params := make(map[string]float64, len(m.params))
	for k, v := range m.params {
		params[k] = v
	}
	return &Model{cfg: m.cfg, area: m.area, params: params}
}

// Propagators computes the effective unitary of each requested gate under
// the current pulse parameters.
func (m *Model) Propagators(gateIDs []string) (map[string]gate.Matrix, error) {
	out := make(map[string]gate.Matrix, len(gateIDs))
	for _, id := range gateIDs {
		if _, done := out[id]; done {
			continue
		}
		name, err := gate.Component(id, m.cfg.Qubit)
		if err != nil {
			return nil, err
		}
		u, err := m.propagator(name)
		if err != nil {
			return nil, fmt.Errorf("gate %q: %w", id, err)
		}
		out[id] = u
	}
	return out, nil
}

// propagator builds the unitary of one elementary gate on the model's qubit.
// Amplitude error scales the rotation angle, a detuned DRAG coefficient
// tilts the axis out of plane (with the off-resonant over-rotation that
// implies), the frequency offset accrues a Z phase over the pulse, and the
// xy_angle rotates the in-plane axis.
func (m *Model) propagator(name string) (gate.Matrix, error) {
	e, ok := gate.ElementaryByName(name)
	if !ok {
		return gate.Matrix{}, fmt.Errorf("unknown gate name %q", name)
	}
	if e.Name == gate.NameID {
		return gate.Identity(), nil
	}

	instr := fmt.Sprintf("%s[%d]", e.Name, m.cfg.Qubit)
	amp := m.params[m.key(instr, "amp")]
	delta := m.params[m.key(instr, "delta")]
	freq := m.params[m.key(instr, "freq_offset")]
	xy := m.params[m.key(instr, "xy_angle")]
	ref := m.cfg.References

	theta := e.Theta * amp / ref.Amp
	phi := e.Phi + (xy - ref.XYAngle)
	ez := m.cfg.DragWeight * (delta - ref.Delta)
	// The detuning phase accrues only while the drive is on, so it is
	// weighted by the envelope area rather than the full pulse window.
	chi := 2 * math.Pi * (freq - ref.FreqOffsetMHz) * 1e6 * m.area

	// Tilting the axis off-plane also over-rotates, like an off-resonant
	// Rabi drive.
	scale := math.Sqrt(1 + ez*ez)
	rot := gate.Rotation(theta*scale, math.Cos(phi), math.Sin(phi), ez)
	return gate.Mul(gate.RZ(chi), rot), nil
}

// Populations returns the excited-state population after applying u to the
// ground state, keyed by the model's state label.
func (m *Model) Populations(u gate.Matrix) map[string]float64 {
	// Column 0 of u is the evolved ground state.
	b := u[1][0]
	pop := real(b)*real(b) + imag(b)*imag(b)
	if pop < 0 {
		pop = 0
	}
	if pop > 1 {
		pop = 1
	}
	return map[string]float64{m.cfg.Label: pop}
}

// Parameter returns the current value of a named parameter, for inspection.
func (m *Model) Parameter(name string) (float64, bool) {
	v, ok := m.params[name]
	return v, ok
}
