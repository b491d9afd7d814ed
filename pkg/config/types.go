package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Experiment is the full run configuration of a calibration run.
type Experiment struct {
	LogLevel     string            `yaml:"log_level"`
	Seed         int64             `yaml:"seed"`
	Channels     []string          `yaml:"channels"`
	DriveChannel string            `yaml:"drive_channel"`
	Initial      []float64         `yaml:"initial"`
	OptMap       [][]ParameterRef  `yaml:"opt_map"`
	Sequences    SequenceConfig    `yaml:"sequences"`
	Measurement  MeasurementConfig `yaml:"measurement"`
	Optimizer    OptimizerConfig   `yaml:"optimizer"`
	Model        ModelConfig       `yaml:"model"`
}

// ParameterRef names one control parameter as the quadruple
// [instruction, channel, envelope, attribute], written in YAML as a
// four-element list, e.g. ["rx90p[0]", d1, gauss, amp].
type ParameterRef struct {
	Instruction string
	Channel     string
	Envelope    string
	Attribute   string
}

// UnmarshalYAML decodes the four-element list form.
func (r *ParameterRef) UnmarshalYAML(value *yaml.Node) error {
	var parts []string
	if err := value.Decode(&parts); err != nil {
		return fmt.Errorf("parameter reference must be a list of strings: %w", err)
	}
	if len(parts) != 4 {
		return fmt.Errorf("parameter reference must have 4 elements [instruction, channel, envelope, attribute], got %d", len(parts))
	}
	r.Instruction, r.Channel, r.Envelope, r.Attribute = parts[0], parts[1], parts[2], parts[3]
	return nil
}

// MarshalYAML encodes back to the list form.
func (r ParameterRef) MarshalYAML() (interface{}, error) {
	return []string{r.Instruction, r.Channel, r.Envelope, r.Attribute}, nil
}

// SequenceConfig holds the benchmarking meta-parameters. These belong to the
// oracle configuration, not to the optimizer's search space.
type SequenceConfig struct {
	Count  int `yaml:"count"`
	Length int `yaml:"length"`
}

// MeasurementConfig selects the readout strategy.
type MeasurementConfig struct {
	Shots int    `yaml:"shots"`
	Mode  string `yaml:"mode"` // exact or sampled
}

// OptimizerConfig holds the search meta-parameters. Tolerance is a pointer
// so that an explicit 0 (disable convergence-based stopping, run to budget)
// can be told apart from an omitted field (default tolerance).
type OptimizerConfig struct {
	Population      int      `yaml:"population"`
	Budget          int      `yaml:"budget"`
	Spread          float64  `yaml:"spread"`
	Tolerance       *float64 `yaml:"tolerance"`
	ToleranceWindow int      `yaml:"tolerance_window"`
	MaxFailures     int      `yaml:"max_failures"`
	Workers         int      `yaml:"workers"`
}

// ModelConfig configures the simulated target system.
type ModelConfig struct {
	Label          string             `yaml:"label"`
	Qubit          int                `yaml:"qubit"`
	Envelope       string             `yaml:"envelope"`
	EnvelopeParams map[string]float64 `yaml:"envelope_params"`
	DragWeight     float64            `yaml:"drag_weight"`
	References     ReferenceConfig    `yaml:"references"`
}

// ReferenceConfig holds the model's calibrated parameter values.
type ReferenceConfig struct {
	Amp           float64 `yaml:"amp"`
	Delta         float64 `yaml:"delta"`
	FreqOffsetMHz float64 `yaml:"freq_offset_mhz"`
	XYAngle       float64 `yaml:"xy_angle"`
}
