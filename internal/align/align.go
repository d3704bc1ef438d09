// Package align maps structural residues onto conservation score sequences.
//
// A chain's residues and a score sequence produced from a multiple sequence
// alignment rarely agree on numbering, and often disagree on content:
// residues missing from the model, non-standard residues and gaps all shift
// positions. Alignment first tries a positional match of the two one-letter
// strings and falls back to a longest common subsequence alignment.
package align

import (
	"github.com/inodb/pocketcons/internal/residue"
)

// ChainResidue is one structural residue in chain order.
type ChainResidue struct {
	Key  residue.Key
	Code byte // one-letter amino acid code
}

// ScoredResidue is one entry of a score sequence. Index is the 0-based
// ordinal within the score sequence, not a structural residue number.
type ScoredResidue struct {
	Code  byte
	Score float64
	Index int
}

// Method identifies how an alignment was obtained.
type Method int

const (
	MethodExact Method = iota // one-letter strings identical, positional map
	MethodLCS                 // longest common subsequence backtracking
)

func (m Method) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodLCS:
		return "lcs"
	}
	return "unknown"
}

// Pair links a chain residue, identified by its position in the chain,
// with the score entry at position Score.
type Pair struct {
	Residue residue.Positioned
	Score   int
}

// Alignment is the result of aligning a chain against a score sequence.
// Pairs are in ascending chain order.
type Alignment struct {
	Method Method
	Pairs  []Pair
}

// Align aligns a chain against a score sequence. Residues that do not
// take part in the alignment receive no pair.
func Align(chain []ChainResidue, scores []ScoredResidue) Alignment {
	if sameSequence(chain, scores) {
		pairs := make([]Pair, len(chain))
		for i := range chain {
			pairs[i] = Pair{Residue: residueAt(chain, i), Score: i}
		}
		return Alignment{Method: MethodExact, Pairs: pairs}
	}

	table := NewTable(chain, scores)
	return Alignment{Method: MethodLCS, Pairs: table.Backtrack(chain, scores)}
}

// Assign aligns a chain against a score sequence and returns the score of
// every aligned residue, keyed by residue key.
func Assign(chain []ChainResidue, scores []ScoredResidue) (map[residue.Key]float64, Method) {
	a := Align(chain, scores)
	out := make(map[residue.Key]float64, len(a.Pairs))
	for _, p := range a.Pairs {
		out[p.Residue.Key] = scores[p.Score].Score
	}
	return out, a.Method
}

// sameSequence reports whether both one-letter strings are identical,
// ignoring case, with every score entry at the ordinal of its residue.
func sameSequence(chain []ChainResidue, scores []ScoredResidue) bool {
	if len(chain) != len(scores) {
		return false
	}
	for i := range chain {
		if !codesMatch(chain[i].Code, scores[i].Code) {
			return false
		}
		if !residueAt(chain, i).SamePosition(entryAt(chain, scores, i)) {
			return false
		}
	}
	return true
}

// residueAt is the positional identity of the i-th chain residue.
func residueAt(chain []ChainResidue, i int) residue.Positioned {
	return residue.Positioned{Key: chain[i].Key, Ordinal: i}
}

// entryAt places the j-th score entry on the chain at its own ordinal.
// Only the chain of the key is meaningful.
func entryAt(chain []ChainResidue, scores []ScoredResidue, j int) residue.Positioned {
	return residue.Positioned{Key: residue.Key{Chain: chain[0].Key.Chain}, Ordinal: scores[j].Index}
}

func codesMatch(a, b byte) bool {
	return upper(a) == upper(b)
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
