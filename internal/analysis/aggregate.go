package analysis

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/inodb/pocketcons/internal/pocket"
)

// RawRow is one pocket of the dataset-wide raw output.
type RawRow struct {
	Native       float64
	Conservation float64
	True         bool
}

// Aggregate accumulates rank statistics over the structures of a dataset.
type Aggregate struct {
	Analyzed int
	Failed   int

	positions    map[pocket.Ordering]*pocket.Positions
	pocketCounts []float64
	trueCons     []float64
	falseCons    []float64
	raw          []RawRow
}

// NewAggregate creates an empty aggregate.
func NewAggregate() *Aggregate {
	ag := &Aggregate{positions: make(map[pocket.Ordering]*pocket.Positions)}
	for _, o := range pocket.Orderings {
		ag.positions[o] = &pocket.Positions{}
	}
	return ag
}

// Add folds the result of one structure into the aggregate.
func (ag *Aggregate) Add(r *StructureResult) {
	ag.Analyzed++
	for _, o := range pocket.Orderings {
		pos := r.Ranking.Positions[o]
		agg := ag.positions[o]
		agg.True = append(agg.True, pos.True...)
		agg.False = append(agg.False, pos.False...)
	}
	ag.pocketCounts = append(ag.pocketCounts, float64(len(r.Pockets)))
	ag.trueCons = append(ag.trueCons, r.Ranking.TrueConservation...)
	ag.falseCons = append(ag.falseCons, r.Ranking.FalseConservation...)
	for _, ps := range r.Pockets {
		ag.raw = append(ag.raw, RawRow{
			Native:       ps.Pocket.Score,
			Conservation: ps.Conservation,
			True:         ps.Pocket.True,
		})
	}
}

// AddFailure counts a structure that could not be analyzed.
func (ag *Aggregate) AddFailure() {
	ag.Failed++
}

// Rows returns the raw pocket rows in dataset order.
func (ag *Aggregate) Rows() []RawRow {
	return ag.raw
}

// RankStats is the average position of true and false pockets under one
// ordering. Averages over no pockets are NaN.
type RankStats struct {
	Ordering pocket.Ordering
	True     float64
	False    float64
}

// Summary is the dataset-wide outcome of an analysis run.
type Summary struct {
	Analyzed          int
	Failed            int
	AvgPockets        float64
	Ranks             []RankStats
	TrueConservation  float64 // mean conservation of true pockets
	FalseConservation float64
}

// Summary computes the dataset-wide averages.
func (ag *Aggregate) Summary() Summary {
	s := Summary{
		Analyzed:          ag.Analyzed,
		Failed:            ag.Failed,
		AvgPockets:        mean(ag.pocketCounts),
		TrueConservation:  mean(ag.trueCons),
		FalseConservation: mean(ag.falseCons),
	}
	for _, o := range pocket.Orderings {
		pos := ag.positions[o]
		s.Ranks = append(s.Ranks, RankStats{
			Ordering: o,
			True:     mean(toFloats(pos.True)),
			False:    mean(toFloats(pos.False)),
		})
	}
	return s
}

// WriteSummary writes the human-readable summary of a run.
func WriteSummary(w io.Writer, s Summary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Structures analyzed: %d, failed: %d\n\n", s.Analyzed, s.Failed)
	for _, label := range []string{"True", "False"} {
		for _, r := range s.Ranks {
			v := r.True
			if label == "False" {
				v = r.False
			}
			fmt.Fprintf(bw, "%s pocket %s rank avg: %s/%s\n", label, r.Ordering, fixed(v), fixed(s.AvgPockets))
		}
	}
	fmt.Fprintf(bw, "\nTrue pocket conservation avg: %s\n", fixed(s.TrueConservation))
	fmt.Fprintf(bw, "False pocket conservation avg: %s\n", fixed(s.FalseConservation))
	return bw.Flush()
}

// WriteRaw writes one native,conservation,is_true row per pocket.
func (ag *Aggregate) WriteRaw(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range ag.raw {
		isTrue := 0.0
		if r.True {
			isTrue = 1.0
		}
		if _, err := fmt.Fprintf(bw, "%f,%f,%f\n", r.Native, r.Conservation, isTrue); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

func toFloats(x []int) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

func fixed(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%f", v)
}
