// Package sequence generates randomized-benchmarking gate sequences. Every
// generated sequence composes to the identity under the ideal algebra of the
// gate set: a random word of Cliffords is closed with the group inverse of
// its running product.
package sequence

import (
	"fmt"

	"github.com/orbit-cal/calibration-core/internal/gate"
	"github.com/orbit-cal/calibration-core/pkg/utils"
)

// Sequence is an ordered list of compound gate identifiers, one per
// elementary time slot across all channels.
type Sequence []string

// ConfigError is a sequence-generation configuration error. It is raised
// before any sequence is produced, never deferred to evaluation time.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "sequence configuration: " + e.Reason
}

// Generator produces randomized benchmarking sequences over a fixed ordered
// set of qubit channels. The generator itself is stateless; randomness comes
// from the RandSource passed to Generate, so concurrent callers can hold
// their own sources.
type Generator struct {
	channels []string
}

// NewGenerator creates a generator for the given ordered channel labels.
func NewGenerator(channels []string) (*Generator, error) {
	if len(channels) == 0 {
		return nil, &ConfigError{Reason: "at least one channel label is required"}
	}
	seen := make(map[string]bool)
	for _, ch := range channels {
		if ch == "" {
			return nil, &ConfigError{Reason: "channel label cannot be empty"}
		}
		if seen[ch] {
			return nil, &ConfigError{Reason: fmt.Sprintf("duplicate channel label %q", ch)}
		}
		seen[ch] = true
	}
	copied := make([]string, len(channels))
	copy(copied, channels)
	return &Generator{channels: copied}, nil
}

// Channels returns the ordered channel labels.
func (g *Generator) Channels() []string {
	out := make([]string, len(g.channels))
	copy(out, g.channels)
	return out
}

// Generate produces count independent random sequences of length Clifford
// operations each, plus the recovery Clifford, on the channel named by
// channelLabel. All other channels idle (padding). length 0 is allowed and
// yields recovery-only sequences of identity padding.
func (g *Generator) Generate(rng *utils.RandSource, count, length int, channelLabel string) ([]Sequence, error) {
	if rng == nil {
		return nil, &ConfigError{Reason: "random source is required"}
	}
	if count <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("sequence count must be positive, got %d", count)}
	}
	if length < 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("sequence length cannot be negative, got %d", length)}
	}
	driven := -1
	for i, ch := range g.channels {
		if ch == channelLabel {
			driven = i
			break
		}
	}
	if driven < 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown channel label %q", channelLabel)}
	}

	table := gate.Cliffords()
	sequences := make([]Sequence, count)
	for s := 0; s < count; s++ {
		seq := make(Sequence, 0, (length+1)*gate.WordLength)
		product := gate.Identity()
		for i := 0; i < length; i++ {
			c := table[rng.Intn(len(table))]
			product = gate.Mul(c.U, product)
			seq = g.appendWord(seq, c.Word, driven)
		}
		inv, ok := gate.InverseIndex(product)
		if !ok {
			// Cannot happen for products of table elements; fail loudly
			// rather than emit a sequence that does not recover.
			return nil, fmt.Errorf("no recovery clifford found for sequence %d", s)
		}
		seq = g.appendWord(seq, table[inv].Word, driven)
		sequences[s] = seq
	}
	return sequences, nil
}

func (g *Generator) appendWord(seq Sequence, word []string, driven int) Sequence {
	for _, name := range word {
		seq = append(seq, gate.PairedID(name, driven, len(g.channels)))
	}
	return seq
}
