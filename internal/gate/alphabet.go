package gate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Elementary is one named gate of the drive alphabet, defined by its nominal
// rotation: angle Theta about the in-plane axis at azimuth Phi.
type Elementary struct {
	Name  string
	Theta float64
	Phi   float64
}

// NameID is the identity gate name.
const NameID = "id"

var alphabet = []Elementary{
	{Name: NameID, Theta: 0, Phi: 0},
	{Name: "rx90p", Theta: math.Pi / 2, Phi: 0},
	{Name: "rx90m", Theta: -math.Pi / 2, Phi: 0},
	{Name: "ry90p", Theta: math.Pi / 2, Phi: math.Pi / 2},
	{Name: "ry90m", Theta: -math.Pi / 2, Phi: math.Pi / 2},
}

// Alphabet returns the elementary gate set in its canonical order.
func Alphabet() []Elementary {
	out := make([]Elementary, len(alphabet))
	copy(out, alphabet)
	return out
}

// ElementaryByName looks up an elementary gate.
func ElementaryByName(name string) (Elementary, bool) {
	for _, e := range alphabet {
		if e.Name == name {
			return e, true
		}
	}
	return Elementary{}, false
}

// Unitary returns the gate's nominal unitary.
func (e Elementary) Unitary() Matrix {
	if e.Theta == 0 {
		return Identity()
	}
	return RotationXY(e.Theta, e.Phi)
}

// PairedID builds the compound gate identifier for a batch of qubit channels
// where the driven qubit plays name and every other qubit idles, e.g.
// "rx90p[0]:id[1]" for driven=0 of 2 qubits.
func PairedID(name string, driven, qubits int) string {
	parts := make([]string, qubits)
	for q := 0; q < qubits; q++ {
		if q == driven {
			parts[q] = fmt.Sprintf("%s[%d]", name, q)
		} else {
			parts[q] = fmt.Sprintf("%s[%d]", NameID, q)
		}
	}
	return strings.Join(parts, ":")
}

// ParseComponent splits a single indexed gate identifier like "rx90p[0]" into
// its gate name and qubit index.
func ParseComponent(component string) (name string, qubit int, err error) {
	open := strings.Index(component, "[")
	if open <= 0 || !strings.HasSuffix(component, "]") {
		return "", 0, fmt.Errorf("malformed gate identifier %q", component)
	}
	name = component[:open]
	qubit, err = strconv.Atoi(component[open+1 : len(component)-1])
	if err != nil {
		return "", 0, fmt.Errorf("malformed qubit index in gate identifier %q", component)
	}
	return name, qubit, nil
}

// Component extracts from a compound identifier the gate name addressed to
// the given qubit.
func Component(compound string, qubit int) (string, error) {
	for _, part := range strings.Split(compound, ":") {
		name, q, err := ParseComponent(part)
		if err != nil {
			return "", err
		}
		if q == qubit {
			return name, nil
		}
	}
	return "", fmt.Errorf("gate %q has no component for qubit %d", compound, qubit)
}
