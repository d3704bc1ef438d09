// Package pocket models predicted ligand-binding pockets and scores them
// by the conservation of their member residues.
package pocket

import (
	"errors"
	"math"

	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/residue"
)

// ErrNoResidues is returned when a pocket has no member residues and its
// conservation average is undefined.
var ErrNoResidues = errors.New("pocket has no member residues")

// Pocket is one row of a pocket prediction table.
type Pocket struct {
	Name           string
	Rank           int
	Score          float64 // native prediction score
	ConnollyPoints int
	SurfaceAtoms   int
	Center         [3]float64
	Residues       []residue.Key
	SurfaceAtomIDs []int
	True           bool // set from ground truth

	scores *conservation.Score
}

// Conservation returns the score store the pocket reads from.
func (p *Pocket) Conservation() *conservation.Score {
	if p.scores == nil {
		return conservation.Empty
	}
	return p.scores
}

// ConservationAverage returns the mean conservation score over the member
// residues. Residues without a score count as 0.
func (p *Pocket) ConservationAverage() (float64, error) {
	if len(p.Residues) == 0 {
		return 0, ErrNoResidues
	}
	scores := p.Conservation()
	sum := 0.0
	for _, k := range p.Residues {
		sum += scores.ScoreFor(k)
	}
	return sum / float64(len(p.Residues)), nil
}

// CombiningScore blends the native score with the conservation average
// using DefaultCombiner.
func (p *Pocket) CombiningScore() (float64, error) {
	return DefaultCombiner.Pocket(p)
}

// Combiner holds the coefficients of the combining score
// sigmoid((C*conservation + D) * (A*native + B)).
type Combiner struct {
	A, B, C, D float64
}

// DefaultCombiner carries the calibrated coefficients.
var DefaultCombiner = Combiner{
	A: -0.118042,
	B: 0.667817,
	C: -0.9389,
	D: -0.0680766,
}

// Combine returns the combining score of a native score and a conservation
// average.
func (c Combiner) Combine(native, conservationAvg float64) float64 {
	return sigmoid((c.C*conservationAvg + c.D) * (c.A*native + c.B))
}

// Pocket returns the combining score of p.
func (c Combiner) Pocket(p *Pocket) (float64, error) {
	avg, err := p.ConservationAverage()
	if err != nil {
		return 0, err
	}
	return c.Combine(p.Score, avg), nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
