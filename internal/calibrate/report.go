package calibrate

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// Reporter receives per-generation summaries. The driver only produces this
// data; rendering and persistence belong to the sink.
type Reporter interface {
	Report(rec GenerationRecord)
	Close() error
}

// LogReporter writes generation summaries to a structured logger.
type LogReporter struct {
	log *slog.Logger
}

// NewLogReporter creates a reporter backed by log.
func NewLogReporter(log *slog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(rec GenerationRecord) {
	args := []any{
		"generation", rec.Generation,
		"evaluations", rec.Evaluations,
		"failures", rec.Failures,
	}
	if rec.BestGoal != nil {
		args = append(args, "best_goal", *rec.BestGoal)
	}
	if rec.BestSoFar != nil {
		args = append(args, "best_so_far", *rec.BestSoFar)
	}
	if rec.GoalP50 != nil {
		args = append(args, "goal_p50", *rec.GoalP50)
	}
	r.log.Info("generation complete", args...)
}

func (r *LogReporter) Close() error {
	return nil
}

// JSONLReporter writes one JSON record per generation, suitable for later
// plotting or analysis.
type JSONLReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
	w   io.Writer
}

// NewJSONLReporter creates a reporter writing to w. If w is an io.Closer it
// is closed by Close.
func NewJSONLReporter(w io.Writer) *JSONLReporter {
	return &JSONLReporter{enc: json.NewEncoder(w), w: w}
}

func (r *JSONLReporter) Report(rec GenerationRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Encode errors are deliberately swallowed; reporting must never stop
	// the run.
	_ = r.enc.Encode(rec)
}

func (r *JSONLReporter) Close() error {
	if c, ok := r.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MultiReporter fans records out to several sinks.
type MultiReporter struct {
	sinks []Reporter
}

// NewMultiReporter combines sinks into one reporter.
func NewMultiReporter(sinks ...Reporter) *MultiReporter {
	return &MultiReporter{sinks: sinks}
}

func (r *MultiReporter) Report(rec GenerationRecord) {
	for _, s := range r.sinks {
		s.Report(rec)
	}
}

func (r *MultiReporter) Close() error {
	var first error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
