package conservation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/pocketcons/internal/align"
)

func TestParseScores_ConCavity(t *testing.T) {
	input := "0\tA\t0.5\n" +
		"1\tc\t-0.2\n" +
		"\n" +
		"2\tD\t1.25\n"

	got, err := ParseScores(strings.NewReader(input), FormatConCavity)
	require.NoError(t, err)
	assert.Equal(t, []align.ScoredResidue{
		{Code: 'A', Score: 0.5, Index: 0},
		{Code: 'C', Score: 0, Index: 1},
		{Code: 'D', Score: 1.25, Index: 2},
	}, got)
}

func TestParseScores_JSD(t *testing.T) {
	input := "# align_column_number\tscore\tcolumn\n" +
		"0\t0.71\tMMMM-M\n" +
		"1\t-1000\t-KKKKK\n" +
		"2\t0.33\tTTT-TT\n"

	got, err := ParseScores(strings.NewReader(input), FormatJSD)
	require.NoError(t, err)
	require.Len(t, got, 2, "gap column is skipped")
	assert.Equal(t, align.ScoredResidue{Code: 'M', Score: 0.71, Index: 0}, got[0])
	assert.Equal(t, align.ScoredResidue{Code: 'T', Score: 0.33, Index: 1}, got[1])
}

func TestParseScores_WhitespaceSeparated(t *testing.T) {
	got, err := ParseScores(strings.NewReader("0 A 0.5\n1  G  0.25\n"), FormatConCavity)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, byte('G'), got[1].Code)
}

func TestParseScores_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"bad score", "0\tA\t0.5\n1\tC\tabc\n", 2},
		{"bad index", "x\tA\t0.5\n", 1},
		{"nan score", "0\tA\tNaN\n", 1},
		{"too few columns", "0\tA\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScores(strings.NewReader(tt.input), FormatConCavity)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSD")
	require.NoError(t, err)
	assert.Equal(t, FormatJSD, f)

	f, err = ParseFormat("concavity")
	require.NoError(t, err)
	assert.Equal(t, FormatConCavity, f)
	assert.Equal(t, "concavity", f.String())

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}
