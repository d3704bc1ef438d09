package align

// Table is the dynamic-programming table of a longest common subsequence
// computation. Cell (i, j) holds the LCS length of the first i chain
// residues and the first j score entries.
type Table struct {
	rows, cols int
	cells      []int
}

// NewTable fills the LCS table for a chain and a score sequence.
// Time and space are O(n*m); chains are at most a few thousand residues.
func NewTable(chain []ChainResidue, scores []ScoredResidue) *Table {
	n, m := len(chain), len(scores)
	t := &Table{rows: n + 1, cols: m + 1, cells: make([]int, (n+1)*(m+1))}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if codesMatch(chain[i-1].Code, scores[j-1].Code) {
				t.set(i, j, t.At(i-1, j-1)+1)
			} else {
				t.set(i, j, max(t.At(i-1, j), t.At(i, j-1)))
			}
		}
	}
	return t
}

// At returns cell (i, j).
func (t *Table) At(i, j int) int {
	return t.cells[i*t.cols+j]
}

func (t *Table) set(i, j, v int) {
	t.cells[i*t.cols+j] = v
}

// Length returns the LCS length of the full sequences.
func (t *Table) Length() int {
	return t.At(t.rows-1, t.cols-1)
}

// Backtrack walks the table from the bottom-right cell and returns the
// matched pairs in ascending order. On a mismatch it moves towards the
// larger neighbour; when both neighbours are equal the score cursor is
// decremented first.
func (t *Table) Backtrack(chain []ChainResidue, scores []ScoredResidue) []Pair {
	pairs := make([]Pair, 0, t.Length())
	i, j := len(chain), len(scores)
	for i > 0 && j > 0 {
		switch {
		case codesMatch(chain[i-1].Code, scores[j-1].Code):
			pairs = append(pairs, Pair{Residue: residueAt(chain, i-1), Score: j - 1})
			i--
			j--
		case t.At(i-1, j) > t.At(i, j-1):
			i--
		default:
			j--
		}
	}

	// Built backwards.
	for a, b := 0, len(pairs)-1; a < b; a, b = a+1, b-1 {
		pairs[a], pairs[b] = pairs[b], pairs[a]
	}
	return pairs
}

// LCSLength returns the LCS length of a chain and a score sequence. It
// computes the same recurrence as NewTable but keeps only two rows.
func LCSLength(chain []ChainResidue, scores []ScoredResidue) int {
	m := len(scores)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := 1; i <= len(chain); i++ {
		for j := 1; j <= m; j++ {
			if codesMatch(chain[i-1].Code, scores[j-1].Code) {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[m]
}
