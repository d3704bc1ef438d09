package compare

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/residue"
	"github.com/inodb/pocketcons/internal/structure"
)

func acdeStructure() *structure.Structure {
	c := &structure.Chain{ID: "A"}
	for i, code := range []byte("ACDE") {
		c.Residues = append(c.Residues, structure.Residue{Key: residue.NewKey("A", i+1, 0), Code: code})
	}
	return &structure.Structure{Name: "1abc.pdb", Chains: []*structure.Chain{c}}
}

func acdeScores() *conservation.Score {
	return conservation.New(map[residue.Key]float64{
		residue.NewKey("A", 1, 0): 0.1,
		residue.NewKey("A", 2, 0): 0.2,
		residue.NewKey("A", 3, 0): 0.3,
		residue.NewKey("A", 4, 0): 0.4,
	})
}

func TestComparison_Samples(t *testing.T) {
	ligands := []residue.Key{residue.NewKey("A", 2, 0), residue.NewKey("A", 4, 0)}
	c := New("1abc.pdb", "hssp", acdeStructure(), acdeScores(), ligands)

	assert.Equal(t, []float64{0.2, 0.4}, c.LigandScores())
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, c.ProteinScores())
	assert.Equal(t, []float64{0.1, 0.3}, c.NonLigandScores())

	diff, err := c.AvgDifference()
	require.NoError(t, err)
	assert.InDelta(t, 0.05, diff, 1e-12)
}

func TestComparison_LigandOrderAndUnscored(t *testing.T) {
	ligands := []residue.Key{residue.NewKey("A", 4, 0), residue.NewKey("B", 9, 0), residue.NewKey("A", 1, 0)}
	c := New("1abc.pdb", "hssp", acdeStructure(), acdeScores(), ligands)
	assert.Equal(t, []float64{0.4, 0, 0.1}, c.LigandScores())
}

func TestComparison_ResolvesLigandsWithoutChain(t *testing.T) {
	ligands := []residue.Key{{SeqNum: 3}}
	c := New("1abc.pdb", "hssp", acdeStructure(), acdeScores(), ligands)
	assert.Equal(t, []float64{0.3}, c.LigandScores())
	assert.Equal(t, []float64{0.1, 0.2, 0.4}, c.NonLigandScores())
}

func TestComparison_EmptyLigandMean(t *testing.T) {
	c := New("1abc.pdb", "hssp", acdeStructure(), acdeScores(), nil)
	_, err := c.AvgDifference()
	assert.ErrorIs(t, err, ErrNoData)

	s := c.Summarize()
	assert.True(t, math.IsNaN(s.MeanLigand))
	assert.True(t, math.IsNaN(s.AvgDifference))
	assert.Equal(t, KSInsufficient, s.KSProtein)
}

func TestMean(t *testing.T) {
	_, err := Mean(nil)
	assert.ErrorIs(t, err, ErrNoData)

	m, err := Mean([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2.5, m)
}

func TestKS(t *testing.T) {
	assert.Equal(t, KSInsufficient, KS([]float64{1}, []float64{2}))
	assert.Equal(t, KSInsufficient, KS([]float64{1, 2, 3}, []float64{2}))
	assert.Equal(t, KSInsufficient, KS(nil, nil))

	assert.InDelta(t, 0, KS([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.InDelta(t, 1, KS([]float64{1, 2}, []float64{5, 6}), 1e-12)
	assert.InDelta(t, 0.5, KS([]float64{1, 2, 3, 4}, []float64{3, 4, 5, 6}), 1e-12)
}

func TestKS_DoesNotReorderInput(t *testing.T) {
	a := []float64{3, 1, 2}
	KS(a, []float64{0, 5})
	assert.Equal(t, []float64{3, 1, 2}, a)
}

func TestKSPValue(t *testing.T) {
	assert.Equal(t, KSInsufficient, KSPValue([]float64{1}, []float64{1}))

	same := KSPValue([]float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5})
	assert.InDelta(t, 1, same, 1e-9)

	a := make([]float64, 50)
	b := make([]float64, 50)
	for i := range a {
		a[i] = float64(i)
		b[i] = float64(i) + 100
	}
	p := KSPValue(a, b)
	assert.Less(t, p, 1e-6)
	assert.GreaterOrEqual(t, p, 0.0)
}

func TestLoadLigands(t *testing.T) {
	keys, err := LoadLigands(strings.NewReader("A_12\n\n13\nB_7A\n"))
	require.NoError(t, err)
	assert.Equal(t, []residue.Key{
		residue.NewKey("A", 12, 0),
		{SeqNum: 13},
		residue.NewKey("B", 7, 'A'),
	}, keys)

	_, err = LoadLigands(strings.NewReader("A_12\nfoo\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestReportWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter(&buf)
	require.NoError(t, w.WriteHeader())

	ligands := []residue.Key{residue.NewKey("A", 2, 0), residue.NewKey("A", 4, 0)}
	require.NoError(t, w.Write(New("1abc.pdb", "hssp", acdeStructure(), acdeScores(), ligands)))
	require.NoError(t, w.Write(New("2xyz.pdb", "hssp", acdeStructure(), acdeScores(), nil)))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#File\tOrigin\t"))

	fields := strings.Split(lines[1], "\t")
	require.Len(t, fields, 8)
	assert.Equal(t, "1abc.pdb", fields[0])
	assert.Equal(t, "hssp", fields[1])
	assert.Equal(t, "2.500000e-01", fields[2])
	assert.Equal(t, "5.000000e-01", fields[3])
	assert.Equal(t, "0.250000", fields[4])
	assert.Equal(t, "0.200000", fields[5])
	assert.Equal(t, "0.300000", fields[6])
	assert.Equal(t, "0.050000", fields[7])

	fields = strings.Split(lines[2], "\t")
	assert.Equal(t, "-1.000000e+00", fields[2])
	assert.Equal(t, "NA", fields[6])
	assert.Equal(t, "NA", fields[7])
}
