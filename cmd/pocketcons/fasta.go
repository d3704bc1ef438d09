package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inodb/pocketcons/internal/residue"
	"github.com/inodb/pocketcons/internal/structure"
)

func newFastaCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "fasta [flags] <structure>...",
		Short: "Export the chain sequences of structures as FASTA",
		Long: `Write one FASTA file per amino-acid chain, named <name><chain><ext>.seq.fasta,
e.g. 1abcA.pdb.seq.fasta. Without --out-dir the records are written to
standard output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				s, err := structure.ReadFile(path)
				if err != nil {
					return err
				}
				if outDir == "" {
					if err := s.WriteFASTA(cmd.OutOrStdout()); err != nil {
						return err
					}
					continue
				}
				if err := writeChainFASTA(s, path, outDir); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Write per-chain FASTA files to this directory")
	return cmd
}

func writeChainFASTA(s *structure.Structure, path, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, c := range s.AminoChains() {
		name := structure.FASTAFileName(path, residue.NormalizeChain(c.ID))
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(s.ChainFASTA(c)), 0644); err != nil {
			return fmt.Errorf("write fasta: %w", err)
		}
	}
	return nil
}
