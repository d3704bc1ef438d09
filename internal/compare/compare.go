// Package compare contrasts the conservation of ligand-binding residues
// with the rest of the protein.
package compare

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/residue"
	"github.com/inodb/pocketcons/internal/structure"
)

// ErrNoData is returned for the mean of an empty sample.
var ErrNoData = errors.New("no data")

// Comparison holds what is needed to contrast ligand and protein scores of
// one structure. All samples are derived on demand.
type Comparison struct {
	FileName string
	Origin   string // label of the score source, e.g. "hssp" or "jsd"
	Scores   *conservation.Score
	Protein  []residue.Key // every amino-acid residue, traversal order
	Ligands  []residue.Key // binding residues, caller order
}

// New creates a comparison for a structure. Ligand keys without a chain
// are completed against the structure.
func New(fileName, origin string, s *structure.Structure, scores *conservation.Score, ligands []residue.Key) *Comparison {
	resolved := make([]residue.Key, len(ligands))
	for i, k := range ligands {
		resolved[i], _ = s.Resolve(k)
	}
	return &Comparison{
		FileName: fileName,
		Origin:   origin,
		Scores:   scores,
		Protein:  s.Keys(),
		Ligands:  resolved,
	}
}

// LigandScores returns the score of each ligand residue in caller order.
func (c *Comparison) LigandScores() []float64 {
	return c.scoresOf(c.Ligands)
}

// ProteinScores returns the score of every amino-acid residue.
func (c *Comparison) ProteinScores() []float64 {
	return c.scoresOf(c.Protein)
}

// NonLigandScores returns the protein scores of residues that are not
// ligand residues.
func (c *Comparison) NonLigandScores() []float64 {
	ligand := make(map[residue.Key]struct{}, len(c.Ligands))
	for _, k := range c.Ligands {
		ligand[k] = struct{}{}
	}
	out := make([]float64, 0, len(c.Protein))
	for _, k := range c.Protein {
		if _, ok := ligand[k]; !ok {
			out = append(out, c.Scores.ScoreFor(k))
		}
	}
	return out
}

func (c *Comparison) scoresOf(keys []residue.Key) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = c.Scores.ScoreFor(k)
	}
	return out
}

// Summary is the set of statistics reported per structure. Means of empty
// samples are NaN.
type Summary struct {
	KSProtein     float64 // KS(protein, ligand)
	KSNonLigand   float64 // KS(non-ligand, ligand)
	PValue        float64 // asymptotic p-value of KSProtein
	MeanProtein   float64
	MeanNonLigand float64
	MeanLigand    float64
	AvgDifference float64 // MeanLigand - MeanProtein
}

// Summarize computes the reported statistics.
func (c *Comparison) Summarize() Summary {
	protein := c.ProteinScores()
	nonLigand := c.NonLigandScores()
	ligand := c.LigandScores()

	s := Summary{
		KSProtein:     KS(protein, ligand),
		KSNonLigand:   KS(nonLigand, ligand),
		PValue:        KSPValue(protein, ligand),
		MeanProtein:   meanOrNaN(protein),
		MeanNonLigand: meanOrNaN(nonLigand),
		MeanLigand:    meanOrNaN(ligand),
	}
	s.AvgDifference = s.MeanLigand - s.MeanProtein
	return s
}

// AvgDifference returns mean(ligand) - mean(protein).
func (c *Comparison) AvgDifference() (float64, error) {
	ligand, err := Mean(c.LigandScores())
	if err != nil {
		return 0, fmt.Errorf("ligand mean: %w", err)
	}
	protein, err := Mean(c.ProteinScores())
	if err != nil {
		return 0, fmt.Errorf("protein mean: %w", err)
	}
	return ligand - protein, nil
}

// Mean returns the arithmetic mean of x.
func Mean(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrNoData
	}
	return stat.Mean(x, nil), nil
}

func meanOrNaN(x []float64) float64 {
	m, err := Mean(x)
	if err != nil {
		return math.NaN()
	}
	return m
}

// LoadLigands reads binding residue ids, one per line. Blank lines are
// skipped.
func LoadLigands(r io.Reader) ([]residue.Key, error) {
	var keys []residue.Key
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		k, err := residue.ParseKey(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		keys = append(keys, k)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan binding residues: %w", err)
	}
	return keys, nil
}
