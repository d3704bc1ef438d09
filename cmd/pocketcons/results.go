package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inodb/pocketcons/internal/compare"
	"github.com/inodb/pocketcons/internal/duckdb"
)

func newResultsCmd() *cobra.Command {
	var (
		origin  string
		pockets string
	)

	cmd := &cobra.Command{
		Use:   "results [flags] <db>",
		Short: "Show results stored by analyze --db",
		Long: `Print the stored comparison report of every structure, or with --pockets
the stored pocket scores of one structure.`,
		Example: `  pocketcons results results.duckdb
  pocketcons results --origin hssp results.duckdb
  pocketcons results --pockets 1abc.pdb --origin hssp results.duckdb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := duckdb.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			if pockets != "" {
				if origin == "" {
					return usageError{fmt.Errorf("--pockets requires --origin")}
				}
				return showPockets(cmd, store, pockets, origin)
			}
			return showComparisons(cmd, store, origin)
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "Only show results of this origin")
	cmd.Flags().StringVar(&pockets, "pockets", "", "Show the pocket scores of this structure file")
	return cmd
}

func showComparisons(cmd *cobra.Command, store *duckdb.Store, origin string) error {
	rows, err := store.Comparisons(cmd.Context(), origin)
	if err != nil {
		return err
	}

	rw := compare.NewReportWriter(cmd.OutOrStdout())
	if err := rw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range rows {
		if err := rw.WriteSummary(r.FileName, r.Origin, r.Summary); err != nil {
			return err
		}
	}
	return rw.Flush()
}

func showPockets(cmd *cobra.Command, store *duckdb.Store, fileName, origin string) error {
	rows, err := store.PocketScores(cmd.Context(), fileName, origin)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no stored pockets for %s (%s)", fileName, origin)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tSCORE\tCONSERVATION\tCOMBINED\tRESIDUES\tTRUE")
	for _, p := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%.4f\t%d\t%t\n",
			p.Rank, p.Name, p.Native, p.Conservation, p.Combined, p.Residues, p.True)
	}
	return tw.Flush()
}
