// Package structure provides the protein structure view consumed by the
// conservation analysis: ordered chains of amino-acid residues.
package structure

import (
	"errors"

	"github.com/inodb/pocketcons/internal/align"
	"github.com/inodb/pocketcons/internal/residue"
)

// ErrNoAminoAcids is returned when a structure contains no protein chain.
var ErrNoAminoAcids = errors.New("structure contains no amino-acid residues")

// Residue is a single amino-acid residue.
type Residue struct {
	Key   residue.Key
	Name3 string // three-letter residue name, e.g. "ALA"
	Code  byte   // one-letter code, 'X' when unknown
}

// Chain is an ordered list of amino-acid residues.
type Chain struct {
	ID       string
	Residues []Residue
}

// Structure is an ordered list of chains.
type Structure struct {
	ID     string // PDB id code from the HEADER record, may be empty
	Name   string // file name the structure was read from
	Chains []*Chain
}

// AlignResidues returns the chain's residues in the form the aligner uses.
func (c *Chain) AlignResidues() []align.ChainResidue {
	out := make([]align.ChainResidue, len(c.Residues))
	for i, r := range c.Residues {
		out[i] = align.ChainResidue{Key: r.Key, Code: r.Code}
	}
	return out
}

// Sequence returns the chain's one-letter sequence.
func (c *Chain) Sequence() string {
	buf := make([]byte, len(c.Residues))
	for i, r := range c.Residues {
		buf[i] = r.Code
	}
	return string(buf)
}

// AminoChains returns the chains holding at least one residue.
func (s *Structure) AminoChains() []*Chain {
	var out []*Chain
	for _, c := range s.Chains {
		if len(c.Residues) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Size returns the number of amino-acid residues across all chains.
func (s *Structure) Size() int {
	n := 0
	for _, c := range s.Chains {
		n += len(c.Residues)
	}
	return n
}

// Keys returns every residue key in chain order, then residue order.
func (s *Structure) Keys() []residue.Key {
	keys := make([]residue.Key, 0, s.Size())
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// Resolve completes a key parsed without chain by finding the first
// residue in traversal order with the same number and insertion code.
// Keys that already carry a chain are returned unchanged.
func (s *Structure) Resolve(k residue.Key) (residue.Key, bool) {
	if k.HasChain() {
		return k, true
	}
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			if r.Key.SeqNum == k.SeqNum && r.Key.InsCode == k.InsCode {
				return r.Key, true
			}
		}
	}
	return k, false
}
