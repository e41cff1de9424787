// Package duckdb stores the history of motif searches in DuckDB.
// Each run keeps its settings, the per-trial scores and the rescan hits,
// so earlier searches can be listed and compared without rerunning them.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for the run history.
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
			return nil, fmt.Errorf("create history directory: %w", err)
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

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR PRIMARY KEY,
			created_at TIMESTAMP,
			input_path VARCHAR,
			input_size BIGINT,
			input_modtime TIMESTAMP,
			sequences BIGINT,
			seed UBIGINT,
			strategy VARCHAR,
			k_min BIGINT,
			k_max BIGINT,
			trials_per_k BIGINT,
			iterations BIGINT,
			best_k BIGINT,
			best_score DOUBLE,
			best_motifs VARCHAR,
			worst_motif VARCHAR,
			threshold DOUBLE,
			failed_trials BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS trials (
			run_id VARCHAR,
			k BIGINT,
			trial BIGINT,
			score DOUBLE,
			motifs VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS hits (
			run_id VARCHAR,
			sequence_index BIGINT,
			strand BIGINT,
			hit_position BIGINT,
			score DOUBLE,
			match_seq VARCHAR,
			window_seq VARCHAR,
			closest_start_codon BIGINT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
