package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/pocketcons/internal/analysis"
	"github.com/inodb/pocketcons/internal/compare"
)

// ComparisonRow is a stored per-structure comparison.
type ComparisonRow struct {
	FileName    string
	Origin      string
	ProteinSize int64
	LigandCount int64
	Summary     compare.Summary
	SourceSize  int64
	SourceMTime time.Time
}

// PocketRow is a stored pocket score.
type PocketRow struct {
	FileName     string
	Origin       string
	Name         string
	Rank         int64
	Native       float64
	Conservation float64
	Combined     float64
	Residues     int64
	True         bool
}

// Save replaces the stored results of one structure. Pocket and residue
// rows are written before the comparison row; on failure every row of the
// structure is removed again.
func (s *Store) Save(ctx context.Context, r *analysis.StructureResult) error {
	name, origin := r.Entry.Name, r.Comparison.Origin

	fp, err := StatFile(r.Entry.Structure)
	if err != nil {
		return fmt.Errorf("stat structure: %w", err)
	}
	if err := s.Delete(ctx, name, origin); err != nil {
		return err
	}

	if err := s.save(ctx, r, fp); err != nil {
		if derr := s.Delete(ctx, name, origin); derr != nil {
			return errors.Join(err, derr)
		}
		return err
	}
	return nil
}

func (s *Store) save(ctx context.Context, r *analysis.StructureResult, fp FileFingerprint) error {
	name, origin := r.Entry.Name, r.Comparison.Origin

	if err := s.withAppenders(ctx, func(pockets, residues *goduckdb.Appender) error {
		for _, ps := range r.Pockets {
			p := ps.Pocket
			if err := pockets.AppendRow(
				name, origin, p.Name, int64(p.Rank), p.Score,
				ps.Conservation, ps.Combined, int64(len(p.Residues)), p.True,
			); err != nil {
				return fmt.Errorf("append pocket score: %w", err)
			}
		}
		for _, k := range r.Scores.Keys() {
			if err := residues.AppendRow(
				name, origin, k.String(), k.Chain, int64(k.SeqNum), r.Scores.ScoreFor(k),
			); err != nil {
				return fmt.Errorf("append residue conservation: %w", err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	sum := r.Summary
	if _, err := s.db.ExecContext(ctx, `INSERT INTO comparisons VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		name, origin, int64(r.Size), int64(len(r.Comparison.Ligands)),
		ksNullable(sum.KSProtein), ksNullable(sum.KSNonLigand), ksNullable(sum.PValue),
		nullable(sum.MeanProtein), nullable(sum.MeanNonLigand), nullable(sum.MeanLigand),
		nullable(sum.AvgDifference), fp.Size, fp.ModTime,
	); err != nil {
		return fmt.Errorf("insert comparison: %w", err)
	}
	return nil
}

// withAppenders opens appenders on pocket_scores and residue_conservation
// and flushes both after fn succeeds.
func (s *Store) withAppenders(ctx context.Context, fn func(pockets, residues *goduckdb.Appender) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var pockets, residues *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		pockets, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "pocket_scores")
		if err != nil {
			return err
		}
		residues, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "residue_conservation")
		if err != nil {
			pockets.Close()
			return err
		}
		return nil
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer pockets.Close()
	defer residues.Close()

	if err := fn(pockets, residues); err != nil {
		return err
	}
	if err := pockets.Flush(); err != nil {
		return fmt.Errorf("flush pocket scores: %w", err)
	}
	return residues.Flush()
}

// Delete removes the stored results of one structure and origin.
func (s *Store) Delete(ctx context.Context, fileName, origin string) error {
	for _, table := range []string{"comparisons", "pocket_scores", "residue_conservation"} {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE file_name=? AND origin=?", fileName, origin); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

// Comparisons returns the stored comparisons of an origin ordered by file
// name. An empty origin returns every origin.
func (s *Store) Comparisons(ctx context.Context, origin string) ([]ComparisonRow, error) {
	query := `SELECT
		file_name, origin, protein_size, ligand_count,
		ks_protein, ks_nonligand, ks_pvalue,
		mean_protein, mean_nonligand, mean_ligand, avg_difference,
		source_size, source_mtime
		FROM comparisons`
	var args []any
	if origin != "" {
		query += " WHERE origin=?"
		args = append(args, origin)
	}
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY file_name, origin", args...)
	if err != nil {
		return nil, fmt.Errorf("query comparisons: %w", err)
	}
	defer rows.Close()

	var out []ComparisonRow
	for rows.Next() {
		var c ComparisonRow
		var ks, ksNon, pv, mp, mn, ml, diff sql.NullFloat64
		if err := rows.Scan(
			&c.FileName, &c.Origin, &c.ProteinSize, &c.LigandCount,
			&ks, &ksNon, &pv, &mp, &mn, &ml, &diff,
			&c.SourceSize, &c.SourceMTime,
		); err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		c.Summary = compare.Summary{
			KSProtein:     ksOrSentinel(ks),
			KSNonLigand:   ksOrSentinel(ksNon),
			PValue:        ksOrSentinel(pv),
			MeanProtein:   orNaN(mp),
			MeanNonLigand: orNaN(mn),
			MeanLigand:    orNaN(ml),
			AvgDifference: orNaN(diff),
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comparisons: %w", err)
	}
	return out, nil
}

// PocketScores returns the stored pockets of one structure in rank order.
func (s *Store) PocketScores(ctx context.Context, fileName, origin string) ([]PocketRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		file_name, origin, name, pocket_rank, native_score, conservation, combined, residue_count, is_true
		FROM pocket_scores
		WHERE file_name=? AND origin=?
		ORDER BY pocket_rank`, fileName, origin)
	if err != nil {
		return nil, fmt.Errorf("query pocket scores: %w", err)
	}
	defer rows.Close()

	var out []PocketRow
	for rows.Next() {
		var p PocketRow
		if err := rows.Scan(
			&p.FileName, &p.Origin, &p.Name, &p.Rank, &p.Native,
			&p.Conservation, &p.Combined, &p.Residues, &p.True,
		); err != nil {
			return nil, fmt.Errorf("scan pocket score: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pocket scores: %w", err)
	}
	return out, nil
}

// ResidueScores returns the stored conservation of one structure keyed by
// residue id (e.g. "A_123").
func (s *Store) ResidueScores(ctx context.Context, fileName, origin string) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT residue_id, score
		FROM residue_conservation
		WHERE file_name=? AND origin=?`, fileName, origin)
	if err != nil {
		return nil, fmt.Errorf("query residue conservation: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var id string
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("scan residue conservation: %w", err)
		}
		out[id] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate residue conservation: %w", err)
	}
	return out, nil
}

// nullable maps undefined means (NaN) to SQL NULL.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// ksNullable maps the insufficient-data sentinel to SQL NULL.
func ksNullable(v float64) any {
	if v == compare.KSInsufficient {
		return nil
	}
	return v
}

func ksOrSentinel(v sql.NullFloat64) float64 {
	if !v.Valid {
		return compare.KSInsufficient
	}
	return v.Float64
}
