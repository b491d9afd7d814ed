package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadExperiment loads and parses an experiment file.
func LoadExperiment(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file %s: %w", path, err)
	}
	exp, err := ParseExperimentYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse experiment file %s: %w", path, err)
	}
	return exp, nil
}

// validateExperiment performs validation on the experiment configuration.
func validateExperiment(exp *Experiment) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[exp.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", exp.LogLevel)
	}

	if len(exp.Channels) == 0 {
		return fmt.Errorf("at least one channel must be defined")
	}
	channelNames := make(map[string]bool)
	for _, ch := range exp.Channels {
		if ch == "" {
			return fmt.Errorf("channel name cannot be empty")
		}
		if channelNames[ch] {
			return fmt.Errorf("duplicate channel name: %s", ch)
		}
		channelNames[ch] = true
	}
	if !channelNames[exp.DriveChannel] {
		return fmt.Errorf("drive_channel %q is not one of the defined channels", exp.DriveChannel)
	}

	if err := validateOptMap(exp); err != nil {
		return fmt.Errorf("opt_map validation failed: %w", err)
	}

	if len(exp.Initial) != len(exp.OptMap) {
		return fmt.Errorf("initial vector has %d values but opt_map has %d groups",
			len(exp.Initial), len(exp.OptMap))
	}

	if exp.Sequences.Count <= 0 {
		return fmt.Errorf("sequences count must be positive, got %d", exp.Sequences.Count)
	}
	if exp.Sequences.Length < 0 {
		return fmt.Errorf("sequences length cannot be negative, got %d", exp.Sequences.Length)
	}

	if exp.Measurement.Shots <= 0 {
		return fmt.Errorf("measurement shots must be positive, got %d", exp.Measurement.Shots)
	}
	if exp.Measurement.Mode != "exact" && exp.Measurement.Mode != "sampled" {
		return fmt.Errorf("measurement mode must be exact or sampled, got %s", exp.Measurement.Mode)
	}

	if err := validateOptimizer(&exp.Optimizer); err != nil {
		return fmt.Errorf("optimizer validation failed: %w", err)
	}

	if err := validateModel(exp); err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}

	return nil
}

func validateOptMap(exp *Experiment) error {
	if len(exp.OptMap) == 0 {
		return fmt.Errorf("opt_map must have at least one group")
	}
	seen := make(map[string]int)
	for i, group := range exp.OptMap {
		if len(group) == 0 {
			return fmt.Errorf("group %d is empty", i)
		}
		for _, ref := range group {
			if ref.Instruction == "" || ref.Channel == "" || ref.Envelope == "" || ref.Attribute == "" {
				return fmt.Errorf("group %d has an incomplete parameter reference", i)
			}
			key := strings.Join([]string{ref.Instruction, ref.Channel, ref.Envelope, ref.Attribute}, "-")
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("parameter %s appears in groups %d and %d", key, prev, i)
			}
			seen[key] = i
		}
	}
	return nil
}

func validateOptimizer(o *OptimizerConfig) error {
	if o.Population <= 0 {
		return fmt.Errorf("population must be positive, got %d", o.Population)
	}
	if o.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %d", o.Budget)
	}
	if o.Spread <= 0 {
		return fmt.Errorf("spread must be positive, got %f", o.Spread)
	}
	if o.Tolerance != nil && *o.Tolerance < 0 {
		return fmt.Errorf("tolerance cannot be negative, got %f", *o.Tolerance)
	}
	if o.ToleranceWindow <= 0 {
		return fmt.Errorf("tolerance_window must be positive, got %d", o.ToleranceWindow)
	}
	if o.MaxFailures < 0 {
		return fmt.Errorf("max_failures cannot be negative, got %d", o.MaxFailures)
	}
	if o.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", o.Workers)
	}
	return nil
}

func validateModel(exp *Experiment) error {
	m := &exp.Model
	if m.Label == "" {
		return fmt.Errorf("label cannot be empty")
	}
	if m.Qubit < 0 || m.Qubit >= len(exp.Channels) {
		return fmt.Errorf("qubit index %d out of range for %d channels", m.Qubit, len(exp.Channels))
	}
	if m.Envelope == "" {
		return fmt.Errorf("envelope cannot be empty")
	}
	if m.EnvelopeParams["t_final"] <= 0 {
		return fmt.Errorf("envelope_params.t_final must be positive")
	}
	if m.References.Amp == 0 {
		return fmt.Errorf("references.amp cannot be zero")
	}

	// The opt map must address the model's channel and envelope, otherwise
	// every evaluation would fail at apply time; catch it up front.
	for i, group := range exp.OptMap {
		for _, ref := range group {
			if ref.Channel != exp.DriveChannel {
				return fmt.Errorf("group %d references channel %q, drive channel is %q", i, ref.Channel, exp.DriveChannel)
			}
			if ref.Envelope != m.Envelope {
				return fmt.Errorf("group %d references envelope %q, model envelope is %q", i, ref.Envelope, m.Envelope)
			}
		}
	}
	return nil
}
