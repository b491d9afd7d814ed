// Package parammap maps the optimizer's flat parameter vector onto named
// physical control parameters. Several parameters may alias one scalar: the
// opt map is an ordered list of groups, and every identifier in group i
// receives vector value i.
package parammap

import (
	"fmt"
	"strings"
)

// ParameterID fully qualifies one control parameter.
type ParameterID struct {
	Instruction string // gate instruction, e.g. "rx90p[0]"
	Channel     string // drive channel, e.g. "d1"
	Envelope    string // envelope component, e.g. "gauss"
	Attribute   string // attribute, e.g. "amp"
}

// String renders the identifier in its canonical dashed form.
func (id ParameterID) String() string {
	return strings.Join([]string{id.Instruction, id.Channel, id.Envelope, id.Attribute}, "-")
}

func (id ParameterID) valid() error {
	if id.Instruction == "" || id.Channel == "" || id.Envelope == "" || id.Attribute == "" {
		return fmt.Errorf("incomplete parameter identifier %q", id.String())
	}
	return nil
}

// Group is one aliasing group: every member receives the same scalar.
type Group []ParameterID

// OptMap is the validated, immutable aliasing structure.
type OptMap struct {
	groups []Group
}

// LengthMismatchError reports a vector whose length does not match the
// number of opt-map groups. The vector is never truncated or padded.
type LengthMismatchError struct {
	Want int
	Got  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("parameter vector has %d values, opt map has %d groups", e.Got, e.Want)
}

// New validates the groups and builds an OptMap. Groups must be non-empty,
// identifiers complete, and no identifier may appear in more than one group.
func New(groups []Group) (*OptMap, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("opt map must have at least one group")
	}
	seen := make(map[string]int)
	copied := make([]Group, len(groups))
	for i, group := range groups {
		if len(group) == 0 {
			return nil, fmt.Errorf("opt map group %d is empty", i)
		}
		copied[i] = make(Group, len(group))
		for j, id := range group {
			if err := id.valid(); err != nil {
				return nil, fmt.Errorf("opt map group %d: %w", i, err)
			}
			key := id.String()
			if prev, dup := seen[key]; dup {
				return nil, fmt.Errorf("parameter %s appears in groups %d and %d", key, prev, i)
			}
			seen[key] = i
			copied[i][j] = id
		}
	}
	return &OptMap{groups: copied}, nil
}

// Len returns the number of groups, which is the required vector length.
func (m *OptMap) Len() int {
	return len(m.groups)
}

// Resolve expands vector into the full named-parameter mapping. It is a pure
// function of the vector and the static opt map.
func (m *OptMap) Resolve(vector []float64) (map[string]float64, error) {
	if len(vector) != len(m.groups) {
		return nil, &LengthMismatchError{Want: len(m.groups), Got: len(vector)}
	}
	resolved := make(map[string]float64)
	for i, group := range m.groups {
		for _, id := range group {
			resolved[id.String()] = vector[i]
		}
	}
	return resolved, nil
}

// GroupDescription summarizes one aliasing group for display.
type GroupDescription struct {
	Index          int
	Representative string
	Members        []string
}

// Describe lists the groups in order with a representative identifier each.
func (m *OptMap) Describe() []GroupDescription {
	out := make([]GroupDescription, len(m.groups))
	for i, group := range m.groups {
		members := make([]string, len(group))
		for j, id := range group {
			members[j] = id.String()
		}
		out[i] = GroupDescription{
			Index:          i,
			Representative: members[0],
			Members:        members,
		}
	}
	return out
}
