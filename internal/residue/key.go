// Package residue provides structural residue identifiers.
package residue

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultChain replaces blank chain identifiers.
const DefaultChain = "A"

// Key identifies a structural residue by chain, sequence number and
// insertion code. Keys compare with ==, which is the only notion of
// identity used for storage lookups.
type Key struct {
	Chain   string
	SeqNum  int
	InsCode byte // 0 when the residue has no insertion code
}

// NewKey creates a key with a normalized chain identifier.
func NewKey(chain string, seqNum int, insCode byte) Key {
	if insCode == ' ' {
		insCode = 0
	}
	return Key{Chain: NormalizeChain(chain), SeqNum: seqNum, InsCode: insCode}
}

// NormalizeChain returns the chain id with blank ids replaced by DefaultChain.
func NormalizeChain(chain string) string {
	chain = strings.TrimSpace(chain)
	if chain == "" {
		return DefaultChain
	}
	return chain
}

// HasChain reports whether the key carries a chain identifier.
// Keys parsed from bare residue numbers ("123") have none.
func (k Key) HasChain() bool {
	return k.Chain != ""
}

// String formats the key the way prediction tables write it, e.g. "A_123B".
func (k Key) String() string {
	var sb strings.Builder
	if k.Chain != "" {
		sb.WriteString(k.Chain)
		sb.WriteByte('_')
	}
	sb.WriteString(strconv.Itoa(k.SeqNum))
	if k.InsCode != 0 {
		sb.WriteByte(k.InsCode)
	}
	return sb.String()
}

// ParseKey parses a residue identifier. Accepted forms are "A_123",
// "A_123B", "123" and "123B". Numbers may be negative. The chain is not
// normalized: a bare number yields a key without chain.
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{}, fmt.Errorf("empty residue id")
	}

	var k Key
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		k.Chain = s[:i]
		s = s[i+1:]
		if k.Chain == "" {
			k.Chain = DefaultChain
		}
	}

	// Split trailing insertion code from the number.
	end := len(s)
	if end > 0 && !isDigit(s[end-1]) {
		k.InsCode = s[end-1]
		end--
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return Key{}, fmt.Errorf("invalid residue number %q", s)
	}
	k.SeqNum = n
	return k, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Positioned pairs a key with its ordinal position within its chain's
// residue list. Positional equality ignores the actual numbering and is
// only meaningful while aligning a chain against a score sequence.
type Positioned struct {
	Key     Key
	Ordinal int
}

// SamePosition reports whether both residues occupy the same ordinal
// position of the same chain.
func (p Positioned) SamePosition(o Positioned) bool {
	return p.Key.Chain == o.Key.Chain && p.Ordinal == o.Ordinal
}
