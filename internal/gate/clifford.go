package gate

import "fmt"

// WordLength is the fixed number of elementary gates every Clifford expands
// to. Shorter products are padded with identity gates.
const WordLength = 4

// NumCliffords is the order of the single-qubit Clifford group.
const NumCliffords = 24

const phaseTol = 1e-9

// Clifford is one element of the single-qubit Clifford group together with
// its fixed elementary-gate decomposition.
type Clifford struct {
	Index int
	Word  []string // exactly WordLength elementary gate names
	U     Matrix
}

var cliffords []Clifford

func init() {
	cliffords = enumerateCliffords()
	if len(cliffords) != NumCliffords {
		panic(fmt.Sprintf("clifford enumeration produced %d elements, want %d", len(cliffords), NumCliffords))
	}
}

// enumerateCliffords builds the 24 Clifford elements by breadth-first search
// over words in the 90-degree generators, keeping the first (shortest) word
// found for each element. The search order is fixed, so the table and the
// decompositions are deterministic.
func enumerateCliffords() []Clifford {
	gens := make([]Elementary, 0, len(alphabet)-1)
	for _, e := range alphabet {
		if e.Name != NameID {
			gens = append(gens, e)
		}
	}

	type node struct {
		u    Matrix
		word []string
	}
	found := []node{{u: Identity()}}
	frontier := []node{{u: Identity()}}

	// Duplicates are detected by direct phase-invariant comparison against
	// every element found so far. Entries of Clifford unitaries tie in
	// magnitude, so any fingerprint anchored on a "largest" entry is unstable
	// under floating-point noise; pairwise comparison is not.
	known := func(u Matrix) bool {
		for _, n := range found {
			if EqualUpToPhase(u, n.u, phaseTol) {
				return true
			}
		}
		return false
	}

	for depth := 1; depth <= WordLength; depth++ {
		var next []node
		for _, n := range frontier {
			for _, g := range gens {
				u := Mul(g.Unitary(), n.u)
				if known(u) {
					continue
				}
				word := make([]string, len(n.word), len(n.word)+1)
				copy(word, n.word)
				word = append(word, g.Name)
				child := node{u: u, word: word}
				found = append(found, child)
				next = append(next, child)
			}
		}
		frontier = next
	}

	out := make([]Clifford, len(found))
	for i, n := range found {
		word := make([]string, WordLength)
		copy(word, n.word)
		for j := len(n.word); j < WordLength; j++ {
			word[j] = NameID
		}
		out[i] = Clifford{Index: i, Word: word, U: n.u}
	}
	return out
}

// Cliffords returns the full Clifford table in enumeration order.
func Cliffords() []Clifford {
	out := make([]Clifford, len(cliffords))
	copy(out, cliffords)
	return out
}

// CliffordAt returns the Clifford at the given table index.
func CliffordAt(index int) (Clifford, error) {
	if index < 0 || index >= len(cliffords) {
		return Clifford{}, fmt.Errorf("clifford index %d out of range [0,%d)", index, len(cliffords))
	}
	return cliffords[index], nil
}

// InverseIndex finds the table index of the Clifford that undoes the
// accumulated unitary u, i.e. Cliffords()[i].U * u == identity up to phase.
func InverseIndex(u Matrix) (int, bool) {
	for _, c := range cliffords {
		if IsIdentity(Mul(c.U, u), phaseTol) {
			return c.Index, true
		}
	}
	return 0, false
}
