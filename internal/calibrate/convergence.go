package calibrate

import (
	"fmt"
	"math"
)

// ConvergenceStrategy decides from the generation history whether the run
// has converged.
type ConvergenceStrategy interface {
	Check(history []GenerationRecord) (bool, string)
	Name() string
}

// ConvergenceConfig tunes convergence detection.
type ConvergenceConfig struct {
	// Tolerance is the minimum improvement of the best-so-far goal over the
	// trailing window that still counts as progress.
	Tolerance float64
	// Window is the trailing window length in generations.
	Window int
	// MinGenerations is the number of generations before convergence can be
	// declared.
	MinGenerations int
}

// DefaultConvergenceConfig returns the default detection settings.
func DefaultConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		Tolerance:      1e-4,
		Window:         10,
		MinGenerations: 5,
	}
}

func (c ConvergenceConfig) withDefaults() ConvergenceConfig {
	d := DefaultConvergenceConfig()
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.MinGenerations <= 0 {
		c.MinGenerations = d.MinGenerations
	}
	return c
}

// NoImprovementStrategy converges when the best-so-far goal improved by less
// than the tolerance over the trailing window.
type NoImprovementStrategy struct {
	cfg ConvergenceConfig
}

// NewNoImprovementStrategy creates the strategy, filling config defaults.
func NewNoImprovementStrategy(cfg ConvergenceConfig) *NoImprovementStrategy {
	return &NoImprovementStrategy{cfg: cfg.withDefaults()}
}

func (s *NoImprovementStrategy) Name() string {
	return "no_improvement"
}

func (s *NoImprovementStrategy) Check(history []GenerationRecord) (bool, string) {
	if len(history) < s.cfg.MinGenerations || len(history) <= s.cfg.Window {
		return false, ""
	}
	last := history[len(history)-1].BestSoFar
	prev := history[len(history)-1-s.cfg.Window].BestSoFar
	if last == nil || prev == nil {
		return false, ""
	}
	improvement := *prev - *last
	if improvement < s.cfg.Tolerance {
		return true, fmt.Sprintf("best goal improved by %.3g over the last %d generations (tolerance %.3g)",
			improvement, s.cfg.Window, s.cfg.Tolerance)
	}
	return false, ""
}

// PlateauStrategy converges when the per-generation best goals inside the
// trailing window span less than the tolerance.
type PlateauStrategy struct {
	cfg ConvergenceConfig
}

// NewPlateauStrategy creates the strategy, filling config defaults.
func NewPlateauStrategy(cfg ConvergenceConfig) *PlateauStrategy {
	return &PlateauStrategy{cfg: cfg.withDefaults()}
}

func (s *PlateauStrategy) Name() string {
	return "plateau"
}

func (s *PlateauStrategy) Check(history []GenerationRecord) (bool, string) {
	if len(history) < s.cfg.MinGenerations || len(history) < s.cfg.Window {
		return false, ""
	}
	window := history[len(history)-s.cfg.Window:]
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, rec := range window {
		if rec.BestGoal == nil {
			return false, ""
		}
		if *rec.BestGoal < lo {
			lo = *rec.BestGoal
		}
		if *rec.BestGoal > hi {
			hi = *rec.BestGoal
		}
	}
	if hi-lo <= s.cfg.Tolerance {
		return true, fmt.Sprintf("generation best goals plateaued for %d generations (range %.3g)",
			s.cfg.Window, hi-lo)
	}
	return false, ""
}

// CombinedStrategy converges when any of its strategies does.
type CombinedStrategy struct {
	strategies []ConvergenceStrategy
}

// NewCombinedStrategy builds the default combination of no-improvement and
// plateau detection.
func NewCombinedStrategy(cfg ConvergenceConfig) *CombinedStrategy {
	return &CombinedStrategy{
		strategies: []ConvergenceStrategy{
			NewNoImprovementStrategy(cfg),
			NewPlateauStrategy(cfg),
		},
	}
}

func (s *CombinedStrategy) Name() string {
	return "combined"
}

func (s *CombinedStrategy) Check(history []GenerationRecord) (bool, string) {
	for _, strategy := range s.strategies {
		if converged, reason := strategy.Check(history); converged {
			return true, fmt.Sprintf("%s: %s", strategy.Name(), reason)
		}
	}
	return false, ""
}
