package compare

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

// ReportWriter writes comparison reports in tab-delimited format.
type ReportWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewReportWriter creates a new report writer.
func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#File",
			"Origin",
			"KS_protein_ligand",
			"KS_nonligand_ligand",
			"Mean_protein",
			"Mean_nonligand",
			"Mean_ligand",
			"Avg_difference",
		},
	}
}

// WriteHeader writes the header line.
func (rw *ReportWriter) WriteHeader() error {
	_, err := rw.w.WriteString(strings.Join(rw.columns, "\t") + "\n")
	return err
}

// Write writes the report line of one comparison.
func (rw *ReportWriter) Write(c *Comparison) error {
	return rw.WriteSummary(c.FileName, c.Origin, c.Summarize())
}

// WriteSummary writes a report line from precomputed statistics. KS
// values use scientific notation, means fixed-point; undefined means are
// written as NA.
func (rw *ReportWriter) WriteSummary(fileName, origin string, s Summary) error {
	fields := []string{
		fileName,
		origin,
		fmt.Sprintf("%e", s.KSProtein),
		fmt.Sprintf("%e", s.KSNonLigand),
		fixed(s.MeanProtein),
		fixed(s.MeanNonLigand),
		fixed(s.MeanLigand),
		fixed(s.AvgDifference),
	}
	_, err := rw.w.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

// Flush flushes any buffered data.
func (rw *ReportWriter) Flush() error {
	return rw.w.Flush()
}

func fixed(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%f", v)
}
