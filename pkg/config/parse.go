package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseExperimentYAML parses an Experiment from YAML bytes, applies defaults
// and validates it.
func ParseExperimentYAML(data []byte) (*Experiment, error) {
	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to parse experiment yaml: %w", err)
	}
	applyDefaults(&exp)
	if err := validateExperiment(&exp); err != nil {
		return nil, fmt.Errorf("invalid experiment: %w", err)
	}
	return &exp, nil
}

// ParseExperimentYAMLString parses an Experiment from a YAML string.
func ParseExperimentYAMLString(yamlText string) (*Experiment, error) {
	return ParseExperimentYAML([]byte(yamlText))
}

func applyDefaults(exp *Experiment) {
	if exp.LogLevel == "" {
		exp.LogLevel = "info"
	}
	if exp.Measurement.Mode == "" {
		exp.Measurement.Mode = "sampled"
	}
	if exp.Measurement.Shots == 0 {
		exp.Measurement.Shots = 1000
	}
	if exp.Optimizer.Population == 0 {
		exp.Optimizer.Population = 5
	}
	if exp.Optimizer.Spread == 0 {
		exp.Optimizer.Spread = 0.05
	}
	if exp.Optimizer.Tolerance == nil {
		tolerance := 1e-4
		exp.Optimizer.Tolerance = &tolerance
	}
	if exp.Optimizer.ToleranceWindow == 0 {
		exp.Optimizer.ToleranceWindow = 10
	}
	if exp.Optimizer.Workers == 0 {
		exp.Optimizer.Workers = 1
	}
	if exp.Model.DragWeight == 0 {
		exp.Model.DragWeight = 0.1
	}
}
