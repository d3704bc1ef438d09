package pocket

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/residue"
)

const header = "name,rank,score,connolly_points,surf_atoms,center_x,center_y,center_z,residue_ids,surf_atom_ids\n"

func row(name string, rank int, score string, residues string) string {
	return name + "," + strconv.Itoa(rank) + "," + score + ",10,5,1.0,2.0,3.0," + residues + ",1 2 3\n"
}

func threePockets() string {
	return header +
		row("pocket1", 1, "9.5", "A_1 A_2") +
		row("pocket2", 2, "4.0", "A_3") +
		row("pocket3", 3, "1.5", "A_4 A_5")
}

func TestParse_Fields(t *testing.T) {
	input := header +
		"pocket1 ,    1,  21.69,  133,  61,  12.5, -3.25, 40.0, A_101 A_102 B_7A, 1 5 9\n"

	pockets, err := Parse(strings.NewReader(input), nil, nil)
	require.NoError(t, err)
	require.Len(t, pockets, 1)

	p := pockets[0]
	assert.Equal(t, "pocket1", p.Name)
	assert.Equal(t, 1, p.Rank)
	assert.InDelta(t, 21.69, p.Score, 1e-9)
	assert.Equal(t, 133, p.ConnollyPoints)
	assert.Equal(t, 61, p.SurfaceAtoms)
	assert.Equal(t, [3]float64{12.5, -3.25, 40.0}, p.Center)
	assert.Equal(t, []residue.Key{
		residue.NewKey("A", 101, 0),
		residue.NewKey("A", 102, 0),
		residue.NewKey("B", 7, 'A'),
	}, p.Residues)
	assert.Equal(t, []int{1, 5, 9}, p.SurfaceAtomIDs)
	assert.False(t, p.True)
	assert.Same(t, conservation.Empty, p.Conservation())
}

func TestParse_RankLabeling(t *testing.T) {
	// One ground-truth rank per structure: [3, -1, 1].
	ranks := []int{3, -1, 1}
	var labels [][]bool
	for _, r := range ranks {
		pockets, err := Parse(strings.NewReader(threePockets()), []int{r}, nil)
		require.NoError(t, err)
		var l []bool
		for _, p := range pockets {
			l = append(l, p.True)
		}
		labels = append(labels, l)
	}

	assert.Equal(t, []bool{false, false, true}, labels[0])
	assert.Equal(t, []bool{false, false, false}, labels[1])
	assert.Equal(t, []bool{true, false, false}, labels[2])
}

func TestParse_MultipleTrueRanks(t *testing.T) {
	pockets, err := Parse(strings.NewReader(threePockets()), []int{1, 2}, nil)
	require.NoError(t, err)
	assert.True(t, pockets[0].True)
	assert.True(t, pockets[1].True)
	assert.False(t, pockets[2].True)
}

func TestParse_RankOutOfRange(t *testing.T) {
	_, err := Parse(strings.NewReader(threePockets()), []int{4}, nil)
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"too few fields", "pocket1,1,2.0\n"},
		{"bad rank", "pocket1,x,2.0,10,5,1,2,3,A_1,1\n"},
		{"bad score", "pocket1,1,abc,10,5,1,2,3,A_1,1\n"},
		{"bad residue", "pocket1,1,2.0,10,5,1,2,3,A_x,1\n"},
		{"bad atom id", "pocket1,1,2.0,10,5,1,2,3,A_1,one\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(header+tt.row), nil, nil)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, 2, pe.Line)
		})
	}
}

func TestConservationAverage(t *testing.T) {
	scores := conservation.New(map[residue.Key]float64{
		residue.NewKey("A", 1, 0): 0.2,
		residue.NewKey("A", 2, 0): 0.6,
	})
	pockets, err := Parse(strings.NewReader(header+row("p", 1, "1.0", "A_1 A_2 A_3")), nil, scores)
	require.NoError(t, err)

	avg, err := pockets[0].ConservationAverage()
	require.NoError(t, err)
	// A_3 has no score and counts as 0.
	assert.InDelta(t, 0.8/3, avg, 1e-12)
}

func TestConservationAverage_NoResidues(t *testing.T) {
	p := &Pocket{Name: "empty"}
	_, err := p.ConservationAverage()
	assert.ErrorIs(t, err, ErrNoResidues)

	_, err = p.CombiningScore()
	assert.ErrorIs(t, err, ErrNoResidues)
}

func TestCombine(t *testing.T) {
	c := DefaultCombiner
	assert.Equal(t, 1/(1+math.Exp(-(c.D*c.B))), c.Combine(0, 0))

	native, cons := 12.0, 0.4
	want := 1 / (1 + math.Exp(-((c.C*cons+c.D)*(c.A*native+c.B))))
	assert.Equal(t, want, c.Combine(native, cons))

	p := &Pocket{
		Score:    native,
		Residues: []residue.Key{residue.NewKey("A", 1, 0)},
		scores:   conservation.New(map[residue.Key]float64{residue.NewKey("A", 1, 0): cons}),
	}
	got, err := p.CombiningScore()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadTrueRanks(t *testing.T) {
	input := "file,pocket_count,ligand,rank\n" +
		"1abc.pdb,5,ATP,2\n" +
		"1abc.pdb,5,MG,1\n" +
		"2xyz.pdb,3,HEM,-1\n"

	ranks, err := LoadTrueRanks(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, map[string][]int{
		"1abc.pdb": {2, 1},
		"2xyz.pdb": {-1},
	}, ranks)

	_, err = LoadTrueRanks(strings.NewReader("h\n1abc.pdb,5,ATP,x\n"))
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestResolveResidues(t *testing.T) {
	p := &Pocket{Residues: []residue.Key{
		residue.NewKey("B", 5, 0),
		{SeqNum: 7},
		{SeqNum: 99},
	}}
	p.ResolveResidues(func(k residue.Key) (residue.Key, bool) {
		if k.SeqNum == 7 {
			return residue.NewKey("C", 7, 0), true
		}
		return k, false
	})
	assert.Equal(t, []residue.Key{
		residue.NewKey("B", 5, 0),
		residue.NewKey("C", 7, 0),
		{SeqNum: 99},
	}, p.Residues)
}
