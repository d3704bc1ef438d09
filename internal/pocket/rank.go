package pocket

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/inodb/pocketcons/internal/residue"
)

// Ordering is a way of ranking the pockets of a structure.
type Ordering int

const (
	OrderNative       Ordering = iota // file order, i.e. native score rank
	OrderConservation                 // conservation average, descending
	OrderCombined                     // combining score, descending
)

func (o Ordering) String() string {
	switch o {
	case OrderNative:
		return "native"
	case OrderConservation:
		return "conservation"
	case OrderCombined:
		return "combined"
	}
	return "unknown"
}

// Orderings lists every ordering in the order they are applied.
var Orderings = []Ordering{OrderNative, OrderConservation, OrderCombined}

// Positions holds the 0-based positions of true and false pockets under
// one ordering.
type Positions struct {
	True  []int
	False []int
}

// Ranking is the rank analysis of one structure's pockets.
type Ranking struct {
	Positions map[Ordering]Positions
	// Conservation averages of true and false pockets, in conservation
	// order.
	TrueConservation  []float64
	FalseConservation []float64
}

// scored caches the derived scores of a pocket.
type scored struct {
	pocket       *Pocket
	conservation float64
	combined     float64
}

// Rank orders the pockets by native rank, then by conservation average,
// then by combining score. Both sorts are stable and each starts from the
// previous order, so ties keep the order of the preceding ranking.
func Rank(pockets []*Pocket, c Combiner) (*Ranking, error) {
	items := make([]scored, len(pockets))
	for i, p := range pockets {
		avg, err := p.ConservationAverage()
		if err != nil {
			return nil, fmt.Errorf("pocket %s: %w", p.Name, err)
		}
		items[i] = scored{pocket: p, conservation: avg, combined: c.Combine(p.Score, avg)}
	}

	r := &Ranking{Positions: make(map[Ordering]Positions, len(Orderings))}
	r.Positions[OrderNative] = positions(items)

	slices.SortStableFunc(items, func(a, b scored) int {
		return cmp.Compare(b.conservation, a.conservation)
	})
	r.Positions[OrderConservation] = positions(items)
	for _, it := range items {
		if it.pocket.True {
			r.TrueConservation = append(r.TrueConservation, it.conservation)
		} else {
			r.FalseConservation = append(r.FalseConservation, it.conservation)
		}
	}

	slices.SortStableFunc(items, func(a, b scored) int {
		return cmp.Compare(b.combined, a.combined)
	})
	r.Positions[OrderCombined] = positions(items)

	return r, nil
}

func positions(items []scored) Positions {
	var pos Positions
	for i, it := range items {
		if it.pocket.True {
			pos.True = append(pos.True, i)
		} else {
			pos.False = append(pos.False, i)
		}
	}
	return pos
}

// ResolveResidues completes member keys that were written without a chain
// id. Keys the resolver cannot place are kept as they are.
func (p *Pocket) ResolveResidues(resolve func(residue.Key) (residue.Key, bool)) {
	for i, k := range p.Residues {
		if k.HasChain() {
			continue
		}
		if full, ok := resolve(k); ok {
			p.Residues[i] = full
		}
	}
}
