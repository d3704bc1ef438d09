package align

// Candidate is a named score sequence competing for a chain.
type Candidate struct {
	Name   string
	Scores []ScoredResidue
}

// Pick returns the index of the candidate whose score sequence has the
// longest common subsequence with the chain, together with that length.
// Ties keep the earliest candidate. Pick returns -1 when there are no
// candidates.
func Pick(chain []ChainResidue, candidates []Candidate) (int, int) {
	best, bestLen := -1, -1
	for i, c := range candidates {
		l := LCSLength(chain, c.Scores)
		if l > bestLen {
			best, bestLen = i, l
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestLen
}
