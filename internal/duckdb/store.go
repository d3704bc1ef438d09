// Package duckdb persists analysis results in DuckDB so that comparisons,
// pocket scores and per-residue conservation can be queried after a run.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding analysis results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory databases.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS comparisons (
			file_name VARCHAR,
			origin VARCHAR,
			protein_size BIGINT,
			ligand_count BIGINT,
			ks_protein DOUBLE,
			ks_nonligand DOUBLE,
			ks_pvalue DOUBLE,
			mean_protein DOUBLE,
			mean_nonligand DOUBLE,
			mean_ligand DOUBLE,
			avg_difference DOUBLE,
			source_size BIGINT,
			source_mtime TIMESTAMP,
			PRIMARY KEY (file_name, origin)
		)`,
		`CREATE TABLE IF NOT EXISTS pocket_scores (
			file_name VARCHAR,
			origin VARCHAR,
			name VARCHAR,
			pocket_rank BIGINT,
			native_score DOUBLE,
			conservation DOUBLE,
			combined DOUBLE,
			residue_count BIGINT,
			is_true BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS residue_conservation (
			file_name VARCHAR,
			origin VARCHAR,
			residue_id VARCHAR,
			chain VARCHAR,
			seq_num BIGINT,
			score DOUBLE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
