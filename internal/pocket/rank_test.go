package pocket

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/residue"
)

func TestRank(t *testing.T) {
	scores := conservation.New(map[residue.Key]float64{
		residue.NewKey("A", 1, 0): 0.1,
		residue.NewKey("A", 2, 0): 0.1,
		residue.NewKey("A", 3, 0): 0.2,
		residue.NewKey("A", 4, 0): 0.9,
		residue.NewKey("A", 5, 0): 0.7,
	})
	// Conservation averages: pocket1 0.1, pocket2 0.2, pocket3 0.8.
	pockets, err := Parse(strings.NewReader(threePockets()), []int{3}, scores)
	require.NoError(t, err)

	r, err := Rank(pockets, DefaultCombiner)
	require.NoError(t, err)

	assert.Equal(t, Positions{True: []int{2}, False: []int{0, 1}}, r.Positions[OrderNative])
	assert.Equal(t, Positions{True: []int{0}, False: []int{1, 2}}, r.Positions[OrderConservation])
	require.Len(t, r.TrueConservation, 1)
	assert.InDelta(t, 0.8, r.TrueConservation[0], 1e-12)
	assert.InDelta(t, 0.2, r.FalseConservation[0], 1e-12)
	assert.InDelta(t, 0.1, r.FalseConservation[1], 1e-12)

	// Ranking does not reorder the caller's slice.
	assert.Equal(t, "pocket1", pockets[0].Name)
}

func TestRank_CombinedMatchesScores(t *testing.T) {
	scores := conservation.New(map[residue.Key]float64{
		residue.NewKey("A", 1, 0): 0.5,
		residue.NewKey("A", 3, 0): 0.1,
		residue.NewKey("A", 4, 0): 0.3,
	})
	pockets, err := Parse(strings.NewReader(threePockets()), []int{2}, scores)
	require.NoError(t, err)

	r, err := Rank(pockets, DefaultCombiner)
	require.NoError(t, err)

	// Position of the true pocket equals the number of pockets with a
	// strictly greater combining score.
	want := 0
	trueScore, err := pockets[1].CombiningScore()
	require.NoError(t, err)
	for _, p := range pockets {
		s, err := p.CombiningScore()
		require.NoError(t, err)
		if s > trueScore {
			want++
		}
	}
	assert.Equal(t, []int{want}, r.Positions[OrderCombined].True)
	assert.Len(t, r.Positions[OrderCombined].False, 2)
}

func TestRank_TiesKeepPreviousOrder(t *testing.T) {
	// No conservation data: every average is 0, so the conservation order
	// equals the native order.
	pockets, err := Parse(strings.NewReader(threePockets()), []int{2}, nil)
	require.NoError(t, err)

	r, err := Rank(pockets, DefaultCombiner)
	require.NoError(t, err)
	assert.Equal(t, r.Positions[OrderNative], r.Positions[OrderConservation])
}

func TestRank_EmptyPocketFails(t *testing.T) {
	pockets := []*Pocket{{Name: "empty"}}
	_, err := Rank(pockets, DefaultCombiner)
	assert.ErrorIs(t, err, ErrNoResidues)
}

func TestOrderingString(t *testing.T) {
	assert.Equal(t, "native", OrderNative.String())
	assert.Equal(t, "conservation", OrderConservation.String())
	assert.Equal(t, "combined", OrderCombined.String())
}
