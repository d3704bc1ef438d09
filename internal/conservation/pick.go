package conservation

import (
	"context"

	"go.uber.org/zap"

	"github.com/inodb/pocketcons/internal/align"
	"github.com/inodb/pocketcons/internal/residue"
	"github.com/inodb/pocketcons/internal/scoresource"
	"github.com/inodb/pocketcons/internal/structure"
)

// Pick is the score source chosen for a chain.
type Pick struct {
	Chain  string
	Source scoresource.Source
	Length int // LCS length between chain and source
}

// Picker chooses score sources for chains when file naming does not tie
// a chain to its source.
type Picker struct {
	format     Format
	logger     *zap.Logger
	candidates []scoresource.Source
	parsed     []align.Candidate
}

// NewPicker parses every candidate once. Candidates that cannot be read or
// parsed are skipped with a warning; the order of the rest is kept, since
// ties go to the earlier candidate.
func NewPicker(ctx context.Context, format Format, candidates []scoresource.Source, logger *zap.Logger) *Picker {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Picker{format: format, logger: logger}
	for _, src := range candidates {
		scores, err := Load(ctx, src, format)
		if err != nil {
			logger.Warn("skipping score candidate", zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		p.candidates = append(p.candidates, src)
		p.parsed = append(p.parsed, align.Candidate{Name: src.Name(), Scores: scores})
	}
	return p
}

// Len returns the number of usable candidates.
func (p *Picker) Len() int {
	return len(p.candidates)
}

// PickChain returns the best candidate for a chain. ok is false when there
// are no candidates.
func (p *Picker) PickChain(c *structure.Chain) (Pick, bool) {
	best, length := align.Pick(c.AlignResidues(), p.parsed)
	if best < 0 {
		return Pick{}, false
	}
	return Pick{Chain: residue.NormalizeChain(c.ID), Source: p.candidates[best], Length: length}, true
}

// PickStructure picks a candidate for every amino-acid chain, in chain order.
func (p *Picker) PickStructure(s *structure.Structure) []Pick {
	var picks []Pick
	for _, c := range s.AminoChains() {
		if pk, ok := p.PickChain(c); ok {
			picks = append(picks, pk)
		}
	}
	return picks
}

// Resolver returns a resolver serving the picks of a structure. Chains
// whose best candidate shares no residue with them stay unresolved.
func (p *Picker) Resolver(s *structure.Structure) scoresource.Resolver {
	m := make(scoresource.MapResolver)
	for _, pk := range p.PickStructure(s) {
		if pk.Length > 0 {
			m[pk.Chain] = pk.Source
		}
	}
	return m
}
