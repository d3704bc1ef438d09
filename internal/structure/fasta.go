package structure

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// fastaLineWidth is the sequence line width of written FASTA records.
const fastaLineWidth = 80

// ChainFASTA formats a chain as a FASTA record with header ">ID:CHAIN".
// It returns "" for chains without residues.
func (s *Structure) ChainFASTA(c *Chain) string {
	seq := c.Sequence()
	if seq == "" {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, ">%s:%s\n", s.ID, c.ID)
	for i := 0; i < len(seq); i += fastaLineWidth {
		end := min(i+fastaLineWidth, len(seq))
		sb.WriteString(seq[i:end])
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteFASTA writes one FASTA record per amino-acid chain.
func (s *Structure) WriteFASTA(w io.Writer) error {
	for _, c := range s.AminoChains() {
		if _, err := io.WriteString(w, s.ChainFASTA(c)); err != nil {
			return fmt.Errorf("write fasta: %w", err)
		}
	}
	return nil
}

// FASTAFileName returns the per-chain FASTA file name for a structure file,
// e.g. "1abc.pdb" and chain "B" give "1abcB.pdb.seq.fasta".
func FASTAFileName(structureFile, chainID string) string {
	base, ext := SplitExt(filepath.Base(structureFile))
	return base + chainID + ext + ".seq.fasta"
}

// SplitExt splits a structure file name into base name and extension,
// treating ".pdb.gz" and ".ent.gz" as a single extension.
func SplitExt(name string) (string, string) {
	for _, ext := range []string{".pdb.gz", ".ent.gz"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext), ext
		}
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}
