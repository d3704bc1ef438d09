package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/pocketcons/internal/compare"
)

// Sink receives every successfully analyzed structure, e.g. to persist it.
type Sink interface {
	Save(ctx context.Context, r *StructureResult) error
}

// Outputs are the optional destinations of a run.
type Outputs struct {
	Report *compare.ReportWriter
	Sink   Sink
}

// Run analyzes entries with a pool of workers and aggregates the results
// in entry order. A structure that fails is logged and counted; it does
// not stop the run. Report or sink write errors do, and cancel the
// structures still queued.
func (a *Analyzer) Run(ctx context.Context, entries []Entry, truth map[string][]int, workers int, out Outputs) (*Aggregate, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make(chan WorkItem)
	go func() {
		defer close(items)
		for i, e := range entries {
			select {
			case items <- WorkItem{Seq: i, Entry: e, TrueRanks: truth[e.Name]}:
			case <-ctx.Done():
				return
			}
		}
	}()

	if out.Report != nil {
		if err := out.Report.WriteHeader(); err != nil {
			return nil, fmt.Errorf("write report header: %w", err)
		}
	}

	ag := NewAggregate()
	err := OrderedCollect(a.ParallelAnalyze(ctx, items, workers), func(wr WorkResult) error {
		if wr.Err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Warn("structure analysis failed",
				zap.String("structure", wr.Entry.Name),
				zap.Error(wr.Err))
			ag.AddFailure()
			return nil
		}

		r := wr.Result
		if out.Report != nil {
			if err := out.Report.WriteSummary(r.Comparison.FileName, r.Comparison.Origin, r.Summary); err != nil {
				cancel()
				return fmt.Errorf("write report: %w", err)
			}
		}
		if out.Sink != nil {
			if err := out.Sink.Save(ctx, r); err != nil {
				cancel()
				return fmt.Errorf("save %s: %w", r.Entry.Name, err)
			}
		}
		ag.Add(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if out.Report != nil {
		if err := out.Report.Flush(); err != nil {
			return nil, fmt.Errorf("flush report: %w", err)
		}
	}
	return ag, nil
}
