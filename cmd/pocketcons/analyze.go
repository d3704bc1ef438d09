package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/pocketcons/internal/analysis"
	"github.com/inodb/pocketcons/internal/compare"
	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/duckdb"
	"github.com/inodb/pocketcons/internal/pocket"
)

var analyzeKeys = map[string]string{
	"analyze.format":       "format",
	"analyze.origin":       "origin",
	"analyze.workers":      "workers",
	"analyze.ground_truth": "ground-truth",
	"analyze.out_dir":      "out-dir",
	"analyze.db":           "db",
	"analyze.metrics_file": "metrics-file",
	"analyze.pick":         "pick",
	"combiner.a":           "combiner-a",
	"combiner.b":           "combiner-b",
	"combiner.c":           "combiner-c",
	"combiner.d":           "combiner-d",
}

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [flags] <dataset-dir>",
		Short: "Analyze binding-site and pocket conservation of a dataset",
		Long: `Analyze every structure (*.pdb) of a dataset directory. Each structure needs
<name>.pdb_binding-residues.txt and <name>.pdb_predictions.csv next to it;
conservation scores are found by naming convention in the score location.

Writes results.<origin>.txt (per-structure comparison) and
resultsAllRaw.<origin>.txt (native,conservation,is_true per pocket) and
prints the pocket ranking summary.`,
		Example: `  pocketcons analyze --format concavity --origin hssp data/
  pocketcons analyze --format jsd --s3-bucket scores --s3-prefix jsd/ data/
  pocketcons analyze --db results.duckdb --metrics-file run.prom data/`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd, analyzeKeys); err != nil {
				return err
			}
			return bindFlags(cmd, scoreKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, a.logger, args[0])
		},
	}

	flags := cmd.Flags()
	flags.String("format", "concavity", "Score file format: concavity, jsd")
	flags.String("origin", "", "Label of the score origin in reports (default: the format name)")
	flags.Int("workers", 0, "Number of parallel workers (0 = all CPUs)")
	flags.String("ground-truth", "", "Ground-truth CSV (default: <dataset-dir>/"+analysis.DefaultGroundTruth+")")
	flags.String("out-dir", "", "Directory for result files (default: the dataset directory)")
	flags.String("db", "", "Also store results in this DuckDB file")
	flags.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	flags.Bool("pick", false, "Pick score files by sequence similarity when naming finds none")
	flags.Float64("combiner-a", pocket.DefaultCombiner.A, "Combining score coefficient a")
	flags.Float64("combiner-b", pocket.DefaultCombiner.B, "Combining score coefficient b")
	flags.Float64("combiner-c", pocket.DefaultCombiner.C, "Combining score coefficient c")
	flags.Float64("combiner-d", pocket.DefaultCombiner.D, "Combining score coefficient d")
	addScoreFlags(flags)

	return cmd
}

func runAnalyze(cmd *cobra.Command, logger *zap.Logger, dir string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := conservation.ParseFormat(viper.GetString("analyze.format"))
	if err != nil {
		return usageError{err}
	}
	origin := viper.GetString("analyze.origin")
	if origin == "" {
		origin = format.String()
	}

	entries, err := analysis.Discover(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no structures found in %s", dir)
	}

	truth, err := loadTruth(dir, logger)
	if err != nil {
		return err
	}

	store, err := openScoreStore(ctx, dir)
	if err != nil {
		return err
	}

	analyzer := analysis.NewAnalyzer(analysis.Config{
		Format: format,
		Origin: origin,
		Combiner: pocket.Combiner{
			A: viper.GetFloat64("combiner.a"),
			B: viper.GetFloat64("combiner.b"),
			C: viper.GetFloat64("combiner.c"),
			D: viper.GetFloat64("combiner.d"),
		},
	}, store.locator(analysis.NamingFor(format)))
	analyzer.SetLogger(logger)

	if viper.GetBool("analyze.pick") {
		candidates, err := store.candidates(ctx)
		if err != nil {
			return err
		}
		picker := conservation.NewPicker(ctx, format, candidates, logger)
		logger.Info("score picking enabled", zap.Int("candidates", picker.Len()))
		analyzer.SetPicker(picker)
	}

	reg := prometheus.NewRegistry()
	analyzer.SetMetrics(analysis.NewMetrics(reg))

	outDir := viper.GetString("analyze.out_dir")
	if outDir == "" {
		outDir = dir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	reportPath := filepath.Join(outDir, "results."+origin+".txt")
	reportFile, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer reportFile.Close()

	out := analysis.Outputs{Report: compare.NewReportWriter(reportFile)}
	if dbPath := viper.GetString("analyze.db"); dbPath != "" {
		db, err := duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		out.Sink = db
		logger.Info("storing results", zap.String("db", db.Path()))
	}

	logger.Info("analyzing dataset",
		zap.String("dir", dir),
		zap.Int("structures", len(entries)),
		zap.String("format", format.String()),
		zap.String("origin", origin),
		zap.Stringer("scores", store))

	start := time.Now()
	ag, err := analyzer.Run(ctx, entries, truth, viper.GetInt("analyze.workers"), out)
	if err != nil {
		return err
	}
	if err := reportFile.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}

	rawPath := filepath.Join(outDir, "resultsAllRaw."+origin+".txt")
	if err := writeRaw(rawPath, ag); err != nil {
		return err
	}

	if err := analysis.WriteSummary(cmd.OutOrStdout(), ag.Summary()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if path := viper.GetString("analyze.metrics_file"); path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	logger.Info("analysis complete",
		zap.Int("analyzed", ag.Analyzed),
		zap.Int("failed", ag.Failed),
		zap.String("report", reportPath),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// loadTruth reads the ground-truth ranks. A missing default file only
// disables true-pocket labeling; a missing explicit file is an error.
func loadTruth(dir string, logger *zap.Logger) (map[string][]int, error) {
	path := viper.GetString("analyze.ground_truth")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, analysis.DefaultGroundTruth)
	}

	truth, err := analysis.LoadGroundTruth(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			logger.Warn("no ground truth, all pockets are labeled false", zap.String("path", path))
			return nil, nil
		}
		return nil, err
	}
	return truth, nil
}

func writeRaw(path string, ag *analysis.Aggregate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create raw results: %w", err)
	}
	if err := ag.WriteRaw(f); err != nil {
		f.Close()
		return fmt.Errorf("write raw results: %w", err)
	}
	return f.Close()
}
