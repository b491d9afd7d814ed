package calibrate

import "sync"

// CandidateRecord is the reportable form of one evaluated candidate. Goal is
// nil when the evaluation failed.
type CandidateRecord struct {
	Vector []float64 `json:"vector"`
	Goal   *float64  `json:"goal,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// GenerationRecord summarizes one complete generation for logging and
// reporting sinks. Aggregate fields are nil when every candidate failed.
type GenerationRecord struct {
	Generation  int               `json:"generation"`
	Evaluations int               `json:"evaluations"`
	Candidates  []CandidateRecord `json:"candidates"`
	Failures    int               `json:"failures"`
	BestGoal    *float64          `json:"best_goal,omitempty"`
	BestSoFar   *float64          `json:"best_so_far,omitempty"`
	GoalP50     *float64          `json:"goal_p50,omitempty"`
	GoalP95     *float64          `json:"goal_p95,omitempty"`
}

// History is the run's generation log. It is safe for concurrent reads while
// the driver appends, so callers can poll progress during a run.
type History struct {
	mu      sync.RWMutex
	records []GenerationRecord
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds a generation record.
func (h *History) Append(rec GenerationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
}

// Len returns the number of recorded generations.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Last returns the most recent record, if any.
func (h *History) Last() (GenerationRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.records) == 0 {
		return GenerationRecord{}, false
	}
	return h.records[len(h.records)-1], true
}

// Snapshot returns a copy of all records.
func (h *History) Snapshot() []GenerationRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]GenerationRecord, len(h.records))
	copy(out, h.records)
	return out
}
