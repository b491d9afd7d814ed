package calibrate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/orbit-cal/calibration-core/pkg/utils"
)

// EvaluateFunc measures one candidate vector and returns its goal value.
// Lower is better by the driver's convention.
type EvaluateFunc func(vector []float64) (float64, error)

// Config holds the driver's stopping and scheduling settings.
type Config struct {
	// Budget is the total evaluation budget across all generations.
	Budget int
	// MaxFailures is the number of failed evaluations tolerated within one
	// generation before the run aborts.
	MaxFailures int
	// Workers bounds how many candidate evaluations run in parallel within
	// one generation. Zero or one means sequential.
	Workers int
	// Convergence tunes the trailing-window stopping rule.
	Convergence ConvergenceConfig
}

// Result is the terminal outcome of a run. Budget exhaustion without
// convergence is a normal outcome, reported here rather than as an error;
// an aborted run still carries the best result found.
type Result struct {
	BestVector  []float64
	BestGoal    float64
	Evaluations int
	Generations int
	Converged   bool
	Aborted     bool
	Reason      string
	History     []GenerationRecord
}

// AbortError signals that a generation exceeded the failure threshold. The
// accompanying Result still holds the best vector found so far.
type AbortError struct {
	Generation int
	Failures   int
	Threshold  int
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("generation %d had %d failed evaluations (threshold %d), aborting run",
		e.Generation, e.Failures, e.Threshold)
}

// Driver runs the closed calibration loop: Sample, Evaluate (parallel, with
// a synchronous generation barrier), Update, Check stop. The running best is
// tracked separately from the live search distribution.
type Driver struct {
	cfg      Config
	strategy Strategy
	conv     ConvergenceStrategy
	reporter Reporter
	log      *slog.Logger

	mu          sync.RWMutex
	bestGoal    float64
	bestVector  []float64
	evaluations int
	generation  int
	history     *History
}

// NewDriver creates a driver around the given search strategy.
func NewDriver(cfg Config, strategy Strategy) *Driver {
	return &Driver{
		cfg:      cfg,
		strategy: strategy,
		conv:     NewCombinedStrategy(cfg.Convergence),
		log:      slog.Default(),
		bestGoal: math.Inf(1),
		history:  NewHistory(),
	}
}

// WithReporter sets the generation summary sink.
func (d *Driver) WithReporter(r Reporter) *Driver {
	d.reporter = r
	return d
}

// WithLogger sets the driver's logger.
func (d *Driver) WithLogger(log *slog.Logger) *Driver {
	d.log = log
	return d
}

// WithConvergence replaces the convergence strategy. A nil strategy disables
// convergence detection entirely; the run then stops only on budget
// exhaustion, the failure threshold, or cancellation.
func (d *Driver) WithConvergence(c ConvergenceStrategy) *Driver {
	d.conv = c
	return d
}

// BestGoal returns the best goal seen so far.
func (d *Driver) BestGoal() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.bestGoal
}

// BestVector returns a copy of the best vector seen so far.
func (d *Driver) BestVector() []float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]float64(nil), d.bestVector...)
}

// Evaluations returns the number of completed evaluations.
func (d *Driver) Evaluations() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.evaluations
}

// History returns the run's generation log.
func (d *Driver) History() *History {
	return d.history
}

// Run executes the loop until the budget is exhausted, convergence is
// detected, the failure threshold is exceeded, or ctx is cancelled.
// Cancellation is honored at generation boundaries: the in-flight generation
// always completes. The result is non-nil on every return path once the
// configuration validates, so the best-found state is never lost.
func (d *Driver) Run(ctx context.Context, evaluate EvaluateFunc) (*Result, error) {
	if evaluate == nil {
		return nil, fmt.Errorf("evaluation function is required")
	}
	if d.strategy == nil {
		return nil, fmt.Errorf("search strategy is required")
	}
	if d.cfg.Budget <= 0 {
		return nil, fmt.Errorf("evaluation budget must be positive, got %d", d.cfg.Budget)
	}

	d.mu.Lock()
	d.bestGoal = math.Inf(1)
	d.bestVector = nil
	d.evaluations = 0
	d.generation = 0
	d.history = NewHistory()
	d.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return d.result(false, false, "run cancelled"), err
		}
		if d.Evaluations() >= d.cfg.Budget {
			return d.result(false, false, "evaluation budget exhausted"), nil
		}

		population := d.strategy.Sample()
		if len(population) == 0 {
			return d.result(false, false, "strategy produced an empty population"),
				fmt.Errorf("strategy %s produced an empty population", d.strategy.Name())
		}

		d.mu.Lock()
		d.generation++
		gen := d.generation
		d.mu.Unlock()

		candidates := d.evaluateGeneration(population, evaluate)

		failures := 0
		goals := make([]float64, 0, len(candidates))
		genBest := math.Inf(1)
		var genBestVector []float64
		for _, c := range candidates {
			if c.Failed() {
				failures++
				d.log.Warn("candidate evaluation failed",
					"generation", gen, "candidate", c.Index, "error", c.Err)
				continue
			}
			goals = append(goals, c.Goal)
			if c.Goal < genBest {
				genBest = c.Goal
				genBestVector = c.Vector
			}
		}

		d.mu.Lock()
		d.evaluations += len(candidates)
		if genBestVector != nil && genBest < d.bestGoal {
			d.bestGoal = genBest
			d.bestVector = append([]float64(nil), genBestVector...)
		}
		d.mu.Unlock()

		rec := d.record(gen, candidates, goals, failures, genBest)
		d.history.Append(rec)
		if d.reporter != nil {
			d.reporter.Report(rec)
		}

		if failures > d.cfg.MaxFailures {
			err := &AbortError{Generation: gen, Failures: failures, Threshold: d.cfg.MaxFailures}
			return d.result(false, true, err.Error()), err
		}

		d.strategy.Update(candidates)

		if d.conv != nil {
			if converged, reason := d.conv.Check(d.history.Snapshot()); converged {
				return d.result(true, false, reason), nil
			}
		}
	}
}

// evaluateGeneration scores every candidate of the generation, in parallel
// up to the worker bound, and blocks until all of them finish. Candidates
// share nothing; ordering within the generation is irrelevant.
func (d *Driver) evaluateGeneration(population [][]float64, evaluate EvaluateFunc) []Candidate {
	workers := d.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	semaphore := make(chan struct{}, workers)
	candidates := make([]Candidate, len(population))
	var wg sync.WaitGroup

	for i, vector := range population {
		wg.Add(1)
		go func(idx int, v []float64) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			goal, err := evaluate(v)
			if err != nil {
				candidates[idx] = Candidate{Index: idx, Vector: v, Goal: math.Inf(1), Err: err}
				return
			}
			candidates[idx] = Candidate{Index: idx, Vector: v, Goal: goal}
		}(i, vector)
	}
	wg.Wait()
	return candidates
}

func (d *Driver) record(gen int, candidates []Candidate, goals []float64, failures int, genBest float64) GenerationRecord {
	recs := make([]CandidateRecord, len(candidates))
	for i, c := range candidates {
		recs[i] = CandidateRecord{Vector: c.Vector}
		if c.Failed() {
			recs[i].Error = c.Err.Error()
		} else {
			goal := c.Goal
			recs[i].Goal = &goal
		}
	}
	rec := GenerationRecord{
		Generation:  gen,
		Evaluations: d.Evaluations(),
		Candidates:  recs,
		Failures:    failures,
	}
	if len(goals) > 0 {
		best := genBest
		soFar := d.BestGoal()
		p50 := utils.Percentile(goals, 50)
		p95 := utils.Percentile(goals, 95)
		rec.BestGoal = &best
		rec.BestSoFar = &soFar
		rec.GoalP50 = &p50
		rec.GoalP95 = &p95
	}
	return rec
}

func (d *Driver) result(converged, aborted bool, reason string) *Result {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return &Result{
		BestVector:  append([]float64(nil), d.bestVector...),
		BestGoal:    d.bestGoal,
		Evaluations: d.evaluations,
		Generations: d.generation,
		Converged:   converged,
		Aborted:     aborted,
		Reason:      reason,
		History:     d.history.Snapshot(),
	}
}
