package pocket

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/residue"
)

// NoTruePocket is the ground-truth rank meaning the structure has no true
// pocket.
const NoTruePocket = -1

const predictionFields = 10

// Parse reads a pocket prediction table. The first line is a header and
// is skipped. Rows are expected in rank order. Each non-sentinel rank in
// trueRanks is 1-based and marks the pocket at that position as true.
// scores may be nil, in which case pockets read conservation.Empty.
func Parse(r io.Reader, trueRanks []int, scores *conservation.Score) ([]*Pocket, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var pockets []*Pocket
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if lineNumber == 1 {
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		p, err := parseRow(line, lineNumber)
		if err != nil {
			return nil, err
		}
		p.scores = scores
		pockets = append(pockets, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan predictions: %w", err)
	}

	if err := MarkTrue(pockets, trueRanks); err != nil {
		return nil, err
	}
	return pockets, nil
}

// MarkTrue flags the pockets at the given 1-based ranks as true.
func MarkTrue(pockets []*Pocket, trueRanks []int) error {
	for _, rank := range trueRanks {
		if rank == NoTruePocket {
			continue
		}
		if rank < 1 || rank > len(pockets) {
			return fmt.Errorf("true pocket rank %d out of range (%d pockets)", rank, len(pockets))
		}
		pockets[rank-1].True = true
	}
	return nil
}

func parseRow(line string, lineNumber int) (*Pocket, error) {
	fields := strings.Split(line, ",")
	if len(fields) < predictionFields {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("expected %d fields, found %d", predictionFields, len(fields)),
		}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	p := &Pocket{Name: fields[0]}
	var err error
	if p.Rank, err = strconv.Atoi(fields[1]); err != nil {
		return nil, fieldError(lineNumber, "rank", fields[1])
	}
	if p.Score, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return nil, fieldError(lineNumber, "score", fields[2])
	}
	if p.ConnollyPoints, err = strconv.Atoi(fields[3]); err != nil {
		return nil, fieldError(lineNumber, "connolly points", fields[3])
	}
	if p.SurfaceAtoms, err = strconv.Atoi(fields[4]); err != nil {
		return nil, fieldError(lineNumber, "surface atoms", fields[4])
	}
	for i := range p.Center {
		if p.Center[i], err = strconv.ParseFloat(fields[5+i], 64); err != nil {
			return nil, fieldError(lineNumber, "center", fields[5+i])
		}
	}

	for _, id := range strings.Fields(fields[8]) {
		k, err := residue.ParseKey(id)
		if err != nil {
			return nil, fieldError(lineNumber, "residue id", id)
		}
		p.Residues = append(p.Residues, k)
	}
	for _, id := range strings.Fields(fields[9]) {
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, fieldError(lineNumber, "surface atom id", id)
		}
		p.SurfaceAtomIDs = append(p.SurfaceAtomIDs, n)
	}
	return p, nil
}

// LoadTrueRanks reads the ground-truth table: a header line, then rows
// whose first column is the structure file name and fourth column a
// 1-based true-pocket rank. A structure may appear on several rows.
func LoadTrueRanks(r io.Reader) (map[string][]int, error) {
	ranks := make(map[string][]int)
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if lineNumber == 1 {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 4 {
			return nil, &ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("expected at least 4 fields, found %d", len(fields)),
			}
		}
		name := strings.TrimSpace(fields[0])
		rank, err := strconv.Atoi(strings.TrimSpace(fields[3]))
		if err != nil {
			return nil, fieldError(lineNumber, "rank", fields[3])
		}
		ranks[name] = append(ranks[name], rank)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan ground truth: %w", err)
	}
	return ranks, nil
}

// ParseError is a malformed prediction or ground-truth row.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pocket parse error at line %d: %s", e.Line, e.Message)
}

func fieldError(line int, field, value string) *ParseError {
	return &ParseError{Line: line, Message: fmt.Sprintf("invalid %s: %q", field, value)}
}
