package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
log_level: debug
seed: 2024
channels: [d1, d2]
drive_channel: d1
initial: [0.5, -1.0]
opt_map:
  - - ["rx90p[0]", d1, gaussian_nonorm, amp]
    - ["ry90p[0]", d1, gaussian_nonorm, amp]
  - - ["rx90p[0]", d1, gaussian_nonorm, delta]
sequences:
  count: 25
  length: 100
measurement:
  shots: 500
  mode: exact
optimizer:
  population: 5
  budget: 450
  spread: 0.02
  tolerance: 0.0001
  tolerance_window: 10
  max_failures: 1
  workers: 4
model:
  label: Q1
  qubit: 0
  envelope: gaussian_nonorm
  envelope_params:
    t_final: 7.0e-9
    sigma: 1.75e-9
  drag_weight: 0.1
  references:
    amp: 0.51
    delta: -1.2
    freq_offset_mhz: -50.5
    xy_angle: 4.1
`

func TestParseExperimentYAML(t *testing.T) {
	exp, err := ParseExperimentYAMLString(validYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.LogLevel != "debug" || exp.Seed != 2024 {
		t.Fatalf("unexpected header fields: %+v", exp)
	}
	if len(exp.Channels) != 2 || exp.DriveChannel != "d1" {
		t.Fatalf("unexpected channels: %v, %s", exp.Channels, exp.DriveChannel)
	}
	if len(exp.OptMap) != 2 {
		t.Fatalf("expected 2 opt map groups, got %d", len(exp.OptMap))
	}
	ref := exp.OptMap[0][1]
	if ref.Instruction != "ry90p[0]" || ref.Channel != "d1" ||
		ref.Envelope != "gaussian_nonorm" || ref.Attribute != "amp" {
		t.Fatalf("unexpected parameter reference: %+v", ref)
	}
	if exp.Sequences.Count != 25 || exp.Sequences.Length != 100 {
		t.Fatalf("unexpected sequences: %+v", exp.Sequences)
	}
	if exp.Measurement.Mode != "exact" || exp.Measurement.Shots != 500 {
		t.Fatalf("unexpected measurement: %+v", exp.Measurement)
	}
	if exp.Optimizer.Budget != 450 || exp.Optimizer.Workers != 4 {
		t.Fatalf("unexpected optimizer: %+v", exp.Optimizer)
	}
	if exp.Model.References.FreqOffsetMHz != -50.5 {
		t.Fatalf("unexpected references: %+v", exp.Model.References)
	}
	if exp.Model.EnvelopeParams["sigma"] != 1.75e-9 {
		t.Fatalf("unexpected envelope params: %v", exp.Model.EnvelopeParams)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	minimal := `
channels: [d1]
drive_channel: d1
initial: [0.5]
opt_map:
  - - ["rx90p[0]", d1, gaussian_nonorm, amp]
sequences:
  count: 10
  length: 20
optimizer:
  budget: 100
model:
  label: Q1
  qubit: 0
  envelope: gaussian_nonorm
  envelope_params:
    t_final: 7.0e-9
    sigma: 1.75e-9
  references:
    amp: 0.5
`
	exp, err := ParseExperimentYAMLString(minimal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %s", exp.LogLevel)
	}
	if exp.Measurement.Mode != "sampled" || exp.Measurement.Shots != 1000 {
		t.Fatalf("expected measurement defaults, got %+v", exp.Measurement)
	}
	if exp.Optimizer.Population != 5 || exp.Optimizer.Spread != 0.05 {
		t.Fatalf("expected optimizer defaults, got %+v", exp.Optimizer)
	}
	if exp.Optimizer.ToleranceWindow != 10 || exp.Optimizer.Workers != 1 {
		t.Fatalf("expected optimizer defaults, got %+v", exp.Optimizer)
	}
	if exp.Optimizer.Tolerance == nil || *exp.Optimizer.Tolerance != 1e-4 {
		t.Fatalf("expected default tolerance 1e-4, got %v", exp.Optimizer.Tolerance)
	}
	if exp.Model.DragWeight != 0.1 {
		t.Fatalf("expected drag weight default, got %v", exp.Model.DragWeight)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"bad log level",
			func(s string) string { return strings.Replace(s, "log_level: debug", "log_level: loud", 1) },
			"invalid log_level",
		},
		{
			"drive channel not defined",
			func(s string) string { return strings.Replace(s, "drive_channel: d1", "drive_channel: d9", 1) },
			"drive_channel",
		},
		{
			"duplicate channel",
			func(s string) string { return strings.Replace(s, "channels: [d1, d2]", "channels: [d1, d1]", 1) },
			"duplicate channel",
		},
		{
			"initial length mismatch",
			func(s string) string { return strings.Replace(s, "initial: [0.5, -1.0]", "initial: [0.5]", 1) },
			"initial vector",
		},
		{
			"zero sequence count",
			func(s string) string { return strings.Replace(s, "count: 25", "count: 0", 1) },
			"count must be positive",
		},
		{
			"bad measurement mode",
			func(s string) string { return strings.Replace(s, "mode: exact", "mode: fuzzy", 1) },
			"measurement mode",
		},
		{
			"zero budget",
			func(s string) string { return strings.Replace(s, "budget: 450", "budget: 0", 1) },
			"budget must be positive",
		},
		{
			"negative tolerance",
			func(s string) string { return strings.Replace(s, "tolerance: 0.0001", "tolerance: -0.1", 1) },
			"tolerance cannot be negative",
		},
		{
			"negative max failures",
			func(s string) string { return strings.Replace(s, "max_failures: 1", "max_failures: -1", 1) },
			"max_failures",
		},
		{
			"duplicate parameter",
			func(s string) string {
				return strings.Replace(s, `["ry90p[0]", d1, gaussian_nonorm, amp]`,
					`["rx90p[0]", d1, gaussian_nonorm, amp]`, 1)
			},
			"appears in groups",
		},
		{
			"opt map channel mismatch",
			func(s string) string {
				return strings.Replace(s, `["rx90p[0]", d1, gaussian_nonorm, delta]`,
					`["rx90p[0]", d2, gaussian_nonorm, delta]`, 1)
			},
			"drive channel",
		},
		{
			"opt map envelope mismatch",
			func(s string) string {
				return strings.Replace(s, `["rx90p[0]", d1, gaussian_nonorm, delta]`,
					`["rx90p[0]", d1, gauss, delta]`, 1)
			},
			"envelope",
		},
		{
			"qubit out of range",
			func(s string) string { return strings.Replace(s, "qubit: 0", "qubit: 2", 1) },
			"qubit index",
		},
		{
			"zero reference amp",
			func(s string) string { return strings.Replace(s, "amp: 0.51", "amp: 0", 1) },
			"references.amp",
		},
	}
	for _, tt := range tests {
		_, err := ParseExperimentYAMLString(tt.mutate(validYAML))
		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Fatalf("%s: error %q does not mention %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestToleranceZeroIsPreserved(t *testing.T) {
	// An explicit 0 means "no convergence-based stopping" and must not be
	// replaced by the default.
	zeroed := strings.Replace(validYAML, "tolerance: 0.0001", "tolerance: 0", 1)
	exp, err := ParseExperimentYAMLString(zeroed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.Optimizer.Tolerance == nil || *exp.Optimizer.Tolerance != 0 {
		t.Fatalf("explicit tolerance 0 should survive defaulting, got %v", exp.Optimizer.Tolerance)
	}
}

func TestParameterRefUnmarshalErrors(t *testing.T) {
	bad := strings.Replace(validYAML,
		`["rx90p[0]", d1, gaussian_nonorm, delta]`,
		`["rx90p[0]", d1, gaussian_nonorm]`, 1)
	if _, err := ParseExperimentYAMLString(bad); err == nil {
		t.Fatalf("expected error for a three-element parameter reference")
	}

	bad = strings.Replace(validYAML,
		`["rx90p[0]", d1, gaussian_nonorm, delta]`,
		`{instruction: x}`, 1)
	if _, err := ParseExperimentYAMLString(bad); err == nil {
		t.Fatalf("expected error for a non-list parameter reference")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := ParseExperimentYAMLString("channels: ["); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestLoadExperiment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "experiment.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	exp, err := LoadExperiment(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.Seed != 2024 {
		t.Fatalf("unexpected seed: %d", exp.Seed)
	}

	if _, err := LoadExperiment(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
