// Package oracle implements the measurement side of the calibration loop:
// it turns a candidate parameter vector into a scalar goal by applying the
// resolved parameters to a snapshot of the target system and running a batch
// of randomized benchmarking sequences against it.
package oracle

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"strings"

	"github.com/orbit-cal/calibration-core/internal/gate"
	"github.com/orbit-cal/calibration-core/internal/parammap"
	"github.com/orbit-cal/calibration-core/internal/sequence"
	"github.com/orbit-cal/calibration-core/internal/target"
	"github.com/orbit-cal/calibration-core/pkg/utils"
)

// Measurement is the per-sequence outcome: an expectation estimate in [0,1],
// its standard error, and the shot count that produced it.
type Measurement struct {
	Mean   float64 `json:"mean"`
	StdErr float64 `json:"std_err"`
	Shots  int     `json:"shots"`
}

// Evaluation is the full result of one oracle call.
type Evaluation struct {
	// Goal is the arithmetic mean of the per-sequence means. The oracle is
	// agnostic to minimize/maximize direction; the caller decides.
	Goal      float64
	Results   []Measurement
	Sequences []sequence.Sequence
	Shots     []int
}

// AmbiguousLabelsError reports that the target system declares more than one
// qubit-channel label, which makes the measured observable ambiguous.
type AmbiguousLabelsError struct {
	Labels []string
}

func (e *AmbiguousLabelsError) Error() string {
	return fmt.Sprintf("target system must declare exactly one state label, got [%s]",
		strings.Join(e.Labels, ", "))
}

// Config holds the oracle's fixed meta-parameters. They are part of the
// oracle configuration, not the optimizer's search space.
type Config struct {
	SequenceCount  int
	SequenceLength int
	Shots          int
	ChannelLabel   string
}

// Oracle evaluates candidate parameter vectors. Evaluate is safe for
// concurrent use: every call operates on a forked system snapshot and a
// random stream derived from the run seed and the candidate itself.
type Oracle struct {
	cfg     Config
	gen     *sequence.Generator
	optMap  *parammap.OptMap
	sys     target.System
	sampler Sampler
	seed    int64
	log     *slog.Logger
}

// New validates the configuration and builds an oracle. sampler selects the
// measurement strategy (exact or finite-shot).
func New(cfg Config, gen *sequence.Generator, optMap *parammap.OptMap, sys target.System, sampler Sampler, seed int64, log *slog.Logger) (*Oracle, error) {
	if gen == nil || optMap == nil || sys == nil || sampler == nil {
		return nil, fmt.Errorf("oracle requires a generator, opt map, system and sampler")
	}
	if cfg.SequenceCount <= 0 {
		return nil, fmt.Errorf("sequence count must be positive, got %d", cfg.SequenceCount)
	}
	if cfg.SequenceLength < 0 {
		return nil, fmt.Errorf("sequence length cannot be negative, got %d", cfg.SequenceLength)
	}
	if cfg.Shots <= 0 {
		return nil, fmt.Errorf("shot count must be positive, got %d", cfg.Shots)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Oracle{
		cfg:     cfg,
		gen:     gen,
		optMap:  optMap,
		sys:     sys,
		sampler: sampler,
		seed:    seed,
		log:     log,
	}, nil
}

// Evaluate runs one closed-loop measurement of the candidate vector.
func (o *Oracle) Evaluate(vector []float64) (*Evaluation, error) {
	resolved, err := o.optMap.Resolve(vector)
	if err != nil {
		return nil, err
	}

	labels := o.sys.Labels()
	if len(labels) != 1 {
		return nil, &AmbiguousLabelsError{Labels: labels}
	}
	label := labels[0]

	// Per-call snapshot: the candidate's parameters never leak into the
	// prototype system or into concurrent evaluations.
	sys := o.sys.Fork()
	if err := sys.ApplyParameters(resolved); err != nil {
		return nil, fmt.Errorf("apply parameters: %w", err)
	}

	rng := o.callRand(vector)
	seqs, err := o.gen.Generate(rng, o.cfg.SequenceCount, o.cfg.SequenceLength, o.cfg.ChannelLabel)
	if err != nil {
		return nil, err
	}

	// Many sequences reuse the same gates; compute each distinct propagator
	// once and expand back out per sequence.
	props, err := sys.Propagators(distinctGates(seqs))
	if err != nil {
		return nil, fmt.Errorf("propagators: %w", err)
	}

	results := make([]Measurement, len(seqs))
	shots := make([]int, len(seqs))
	means := make([]float64, len(seqs))
	for i, seq := range seqs {
		u := gate.Identity()
		for _, id := range seq {
			u = gate.Mul(props[id], u)
		}
		pop := sys.Populations(u)[label]
		pop = utils.ClampFloat64(pop, 0, 1)
		results[i] = o.sampler.Sample(rng, pop, o.cfg.Shots)
		shots[i] = results[i].Shots
		means[i] = results[i].Mean
	}

	goal := utils.Mean(means)
	o.log.Debug("oracle evaluation",
		"goal", goal,
		"sequences", len(seqs),
		"distinct_gates", len(props))
	return &Evaluation{
		Goal:      goal,
		Results:   results,
		Sequences: seqs,
		Shots:     shots,
	}, nil
}

// callRand derives a deterministic per-call random source from the run seed
// and the candidate vector, so results are reproducible regardless of the
// order in which parallel evaluations run.
func (o *Oracle) callRand(vector []float64) *utils.RandSource {
	h := fnv.New64a()
	var buf [8]byte
	putUint64(&buf, uint64(o.seed))
	h.Write(buf[:])
	for _, v := range vector {
		putUint64(&buf, math.Float64bits(v))
		h.Write(buf[:])
	}
	seed := int64(h.Sum64())
	if seed == 0 {
		seed = 1
	}
	return utils.NewRandSource(seed)
}

func putUint64(buf *[8]byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// distinctGates collects the unique gate identifiers across the batch in
// first-seen order.
func distinctGates(seqs []sequence.Sequence) []string {
	seen := make(map[string]bool)
	var out []string
	for _, seq := range seqs {
		for _, id := range seq {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
