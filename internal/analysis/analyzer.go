package analysis

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/pocketcons/internal/compare"
	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/pocket"
	"github.com/inodb/pocketcons/internal/residue"
	"github.com/inodb/pocketcons/internal/scoresource"
	"github.com/inodb/pocketcons/internal/structure"
)

// Config holds the settings of an analysis run.
type Config struct {
	Format   conservation.Format
	Origin   string // label written to reports, e.g. "hssp"
	Combiner pocket.Combiner
}

// PocketScore is a pocket with its derived scores.
type PocketScore struct {
	Pocket       *pocket.Pocket
	Conservation float64
	Combined     float64
}

// StructureResult is the outcome of analyzing one structure.
type StructureResult struct {
	Entry      Entry
	Size       int // amino-acid residues
	Chains     []conservation.ChainResult
	Scores     *conservation.Score
	Comparison *compare.Comparison
	Summary    compare.Summary
	Pockets    []PocketScore // file order
	Ranking    *pocket.Ranking
	Duration   time.Duration
}

// Analyzer runs the per-structure pipeline: structure, conservation
// scores, ligand comparison and pocket ranking.
type Analyzer struct {
	cfg     Config
	locate  Locator
	picker  *conservation.Picker
	builder *conservation.Builder
	logger  *zap.Logger
	metrics *Metrics
}

// NewAnalyzer creates an analyzer resolving score files through locate.
// A zero Combiner is replaced by pocket.DefaultCombiner.
func NewAnalyzer(cfg Config, locate Locator) *Analyzer {
	if cfg.Combiner == (pocket.Combiner{}) {
		cfg.Combiner = pocket.DefaultCombiner
	}
	return &Analyzer{
		cfg:     cfg,
		locate:  locate,
		builder: conservation.NewBuilder(cfg.Format),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for warnings.
func (a *Analyzer) SetLogger(l *zap.Logger) {
	a.logger = l
	a.builder.SetLogger(l)
}

// SetPicker enables LCS-based picking for chains the locator cannot
// resolve.
func (a *Analyzer) SetPicker(p *conservation.Picker) {
	a.picker = p
}

// SetMetrics enables metrics collection.
func (a *Analyzer) SetMetrics(m *Metrics) {
	a.metrics = m
}

// Origin returns the score origin label.
func (a *Analyzer) Origin() string {
	return a.cfg.Origin
}

// Analyze runs the pipeline for one structure. trueRanks are the 1-based
// ranks of its true pockets and may be nil.
func (a *Analyzer) Analyze(ctx context.Context, e Entry, trueRanks []int) (*StructureResult, error) {
	start := time.Now()
	r, err := a.analyze(ctx, e, trueRanks)
	if err != nil {
		a.metrics.failed(time.Since(start))
		return nil, err
	}
	r.Duration = time.Since(start)
	a.metrics.observe(r)
	return r, nil
}

func (a *Analyzer) analyze(ctx context.Context, e Entry, trueRanks []int) (*StructureResult, error) {
	s, err := structure.ReadFile(e.Structure)
	if err != nil {
		return nil, err
	}

	resolver := a.locate.Resolver(e.Base)
	if a.picker != nil {
		resolver = scoresource.Fallback(resolver, a.picker.Resolver(s))
	}
	scores, chains, err := a.builder.Build(ctx, s, resolver)
	if err != nil {
		return nil, fmt.Errorf("build conservation: %w", err)
	}
	if scores.IsEmpty() {
		a.logger.Debug("no conservation scores", zap.String("structure", e.Name))
	}

	ligands, err := readLigands(e.Binding)
	if err != nil {
		return nil, err
	}
	comparison := compare.New(e.Name, a.cfg.Origin, s, scores, ligands)

	pockets, err := readPockets(e.Predictions, trueRanks, scores)
	if err != nil {
		return nil, err
	}
	scored := make([]PocketScore, len(pockets))
	for i, p := range pockets {
		p.ResolveResidues(s.Resolve)
		avg, err := p.ConservationAverage()
		if err != nil {
			return nil, fmt.Errorf("pocket %s: %w", p.Name, err)
		}
		scored[i] = PocketScore{Pocket: p, Conservation: avg, Combined: a.cfg.Combiner.Combine(p.Score, avg)}
	}
	ranking, err := pocket.Rank(pockets, a.cfg.Combiner)
	if err != nil {
		return nil, err
	}

	return &StructureResult{
		Entry:      e,
		Size:       s.Size(),
		Chains:     chains,
		Scores:     scores,
		Comparison: comparison,
		Summary:    comparison.Summarize(),
		Pockets:    scored,
		Ranking:    ranking,
	}, nil
}

func readLigands(path string) ([]residue.Key, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open binding residues: %w", err)
	}
	defer f.Close()
	return compare.LoadLigands(f)
}

func readPockets(path string, trueRanks []int, scores *conservation.Score) ([]*pocket.Pocket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open predictions: %w", err)
	}
	defer f.Close()

	pockets, err := pocket.Parse(f, trueRanks, scores)
	if err != nil {
		return nil, fmt.Errorf("parse predictions: %w", err)
	}
	return pockets, nil
}
