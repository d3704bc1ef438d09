package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/structure"
)

func newPickScoresCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick-scores [flags] <structure>...",
		Short: "Choose the best-matching score file for every chain",
		Long: `For every amino-acid chain of each structure, pick the candidate score file
whose sequence has the longest common subsequence with the chain. Ties go
to the first candidate in name order.

Prints one line per chain: <structure> <chain> <score-file> <lcs-length>.`,
		Example: `  pocketcons pick-scores --scores-dir scores/ 1abc.pdb 2xyz.pdb`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd, map[string]string{"analyze.format": "format"}); err != nil {
				return err
			}
			return bindFlags(cmd, scoreKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPickScores(cmd, a.logger, args)
		},
	}

	cmd.Flags().String("format", "concavity", "Score file format: concavity, jsd")
	addScoreFlags(cmd.Flags())
	return cmd
}

func runPickScores(cmd *cobra.Command, logger *zap.Logger, paths []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := conservation.ParseFormat(viper.GetString("analyze.format"))
	if err != nil {
		return usageError{err}
	}
	store, err := openScoreStore(ctx, "")
	if err != nil {
		return err
	}
	candidates, err := store.candidates(ctx)
	if err != nil {
		return err
	}
	picker := conservation.NewPicker(ctx, format, candidates, logger)
	if picker.Len() == 0 {
		return fmt.Errorf("no usable score files in %s", store)
	}

	w := cmd.OutOrStdout()
	for _, path := range paths {
		s, err := structure.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		for _, pk := range picker.PickStructure(s) {
			fmt.Fprintf(w, "%s %s %s %d\n", name, pk.Chain, pk.Source.Name(), pk.Length)
		}
	}
	return nil
}
