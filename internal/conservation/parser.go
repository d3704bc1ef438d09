package conservation

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/inodb/pocketcons/internal/align"
)

// Format is the column layout of a score file.
type Format int

const (
	// FormatConCavity has columns [index, letter, score].
	FormatConCavity Format = iota
	// FormatJSD has columns [index, score, letter]. Only the first
	// character of the letter column is used.
	FormatJSD
)

func (f Format) String() string {
	switch f {
	case FormatConCavity:
		return "concavity"
	case FormatJSD:
		return "jsd"
	}
	return "unknown"
}

// ParseFormat parses a format name ("concavity" or "jsd").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "concavity", "hssp":
		return FormatConCavity, nil
	case "jsd":
		return FormatJSD, nil
	}
	return 0, fmt.Errorf("unknown score format %q (want concavity or jsd)", s)
}

// gapLetter marks alignment columns absent from the query sequence.
const gapLetter = '-'

// ParseScores reads a score sequence. Blank lines and lines starting with
// '#' are skipped, as are gap columns. Negative scores are clamped to 0.
// Index is the ordinal of the entry within the returned sequence.
func ParseScores(r io.Reader, format Format) ([]align.ScoredResidue, error) {
	var out []align.ScoredResidue
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			fields = strings.Fields(line)
		}
		if len(fields) < 3 {
			return nil, &ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("expected 3 columns, found %d", len(fields)),
			}
		}

		var indexField, letterField, scoreField string
		switch format {
		case FormatConCavity:
			indexField, letterField, scoreField = fields[0], fields[1], fields[2]
		case FormatJSD:
			indexField, scoreField, letterField = fields[0], fields[1], fields[2]
		default:
			return nil, fmt.Errorf("unsupported score format %d", format)
		}

		if _, err := strconv.Atoi(strings.TrimSpace(indexField)); err != nil {
			return nil, &ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("invalid index: %s", indexField),
			}
		}

		score, err := strconv.ParseFloat(strings.TrimSpace(scoreField), 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, &ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("invalid score: %s", scoreField),
			}
		}
		if score < 0 {
			score = 0
		}

		letterField = strings.TrimSpace(letterField)
		if letterField == "" {
			return nil, &ParseError{Line: lineNumber, Message: "empty residue letter"}
		}
		letter := letterField[0]
		if letter == gapLetter {
			continue
		}
		if letter >= 'a' && letter <= 'z' {
			letter -= 'a' - 'A'
		}

		out = append(out, align.ScoredResidue{Code: letter, Score: score, Index: len(out)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan score file: %w", err)
	}

	return out, nil
}

// ParseError is a malformed score file line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("score parse error at line %d: %s", e.Line, e.Message)
}
