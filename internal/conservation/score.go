// Package conservation builds per-residue conservation scores for protein
// structures by aligning each chain against its score sequence.
package conservation

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/pocketcons/internal/align"
	"github.com/inodb/pocketcons/internal/residue"
	"github.com/inodb/pocketcons/internal/scoresource"
	"github.com/inodb/pocketcons/internal/structure"
)

// Score maps residue keys to conservation scores. It is immutable once
// built and safe for concurrent reads.
type Score struct {
	scores map[residue.Key]float64
}

// Empty is the sentinel for "no conservation data". It is distinct from a
// score that holds entries which all happen to be zero.
var Empty = &Score{}

// New creates a score from a map. An empty map yields Empty.
func New(scores map[residue.Key]float64) *Score {
	if len(scores) == 0 {
		return Empty
	}
	return &Score{scores: maps.Clone(scores)}
}

// ScoreFor returns the score of a residue, or 0 when the residue has none.
func (s *Score) ScoreFor(k residue.Key) float64 {
	return s.scores[k]
}

// IsEmpty reports whether no residue has a score.
func (s *Score) IsEmpty() bool {
	return len(s.scores) == 0
}

// Len returns the number of residues with a score.
func (s *Score) Len() int {
	return len(s.scores)
}

// Keys returns the scored residue keys ordered by chain, number and
// insertion code.
func (s *Score) Keys() []residue.Key {
	keys := slices.Collect(maps.Keys(s.scores))
	slices.SortFunc(keys, func(a, b residue.Key) int {
		return cmp.Or(
			strings.Compare(a.Chain, b.Chain),
			cmp.Compare(a.SeqNum, b.SeqNum),
			cmp.Compare(a.InsCode, b.InsCode),
		)
	})
	return keys
}

// ChainResult describes how one chain was scored.
type ChainResult struct {
	Chain    string
	Source   string // empty when no source was resolved
	Method   align.Method
	Residues int // residues in the chain
	Aligned  int // residues that received a score
}

// Resolved reports whether a score source was found for the chain.
func (c ChainResult) Resolved() bool {
	return c.Source != ""
}

// Builder builds conservation scores from score sources.
type Builder struct {
	format Format
	logger *zap.Logger
}

// NewBuilder creates a builder parsing sources in the given format.
func NewBuilder(format Format) *Builder {
	return &Builder{format: format, logger: zap.NewNop()}
}

// SetLogger sets the logger for per-chain diagnostics.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// Build scores every amino-acid chain of a structure. Every residue of a
// chain with a score source gets an entry, 0 where it did not align.
// Chains without a source contribute nothing. Any malformed score source
// fails the whole build. When no chain resolved a source the result is
// Empty.
func (b *Builder) Build(ctx context.Context, s *structure.Structure, resolver scoresource.Resolver) (*Score, []ChainResult, error) {
	acc := make(map[residue.Key]float64)
	var results []ChainResult

	for _, c := range s.AminoChains() {
		part, res, err := b.scoreChain(ctx, c, resolver)
		if err != nil {
			return nil, nil, fmt.Errorf("chain %s: %w", residue.NormalizeChain(c.ID), err)
		}
		maps.Copy(acc, part)
		results = append(results, res)
	}

	return New(acc), results, nil
}

// scoreChain aligns one chain against its score sequence. The returned
// keys all belong to the chain, so partial maps never collide.
func (b *Builder) scoreChain(ctx context.Context, c *structure.Chain, resolver scoresource.Resolver) (map[residue.Key]float64, ChainResult, error) {
	chainID := residue.NormalizeChain(c.ID)
	res := ChainResult{Chain: chainID, Residues: len(c.Residues)}

	src, ok, err := resolver.Resolve(ctx, chainID)
	if err != nil {
		return nil, res, fmt.Errorf("resolve score source: %w", err)
	}
	if !ok {
		b.logger.Debug("no score source for chain", zap.String("chain", chainID))
		return nil, res, nil
	}
	res.Source = src.Name()

	scores, err := Load(ctx, src, b.format)
	if err != nil {
		return nil, res, err
	}

	// Every residue of a resolved chain gets an entry; unaligned ones stay 0.
	part := make(map[residue.Key]float64, len(c.Residues))
	for _, r := range c.Residues {
		part[r.Key] = 0
	}
	aligned, method := align.Assign(c.AlignResidues(), scores)
	maps.Copy(part, aligned)
	res.Method = method
	res.Aligned = len(aligned)
	b.logger.Debug("aligned chain",
		zap.String("chain", chainID),
		zap.String("source", res.Source),
		zap.Stringer("method", method),
		zap.Int("aligned", res.Aligned),
		zap.Int("residues", res.Residues))
	return part, res, nil
}

// Load opens and parses a score source.
func Load(ctx context.Context, src scoresource.Source, format Format) ([]align.ScoredResidue, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	scores, err := ParseScores(rc, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name(), err)
	}
	return scores, nil
}
