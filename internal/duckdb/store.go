// Package duckdb provides on-disk storage for pipeline results.
// Gene models parsed from GTF are cached as gob files (fast, pure Go).
// Classifications and event tests land in DuckDB (queryable, append-only).
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for persisting results.
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

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS classifications (
		read_name VARCHAR,
		chrom VARCHAR,
		strand TINYINT,
		exon_count INTEGER,
		length BIGINT,
		category VARCHAR,
		gene_id VARCHAR,
		gene_name VARCHAR,
		transcript_id VARCHAR,
		novel_splice_sites INTEGER,
		PRIMARY KEY (read_name)
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS event_tests (
		gene_id VARCHAR,
		chrom VARCHAR,
		type_a VARCHAR,
		start_a BIGINT,
		end_a BIGINT,
		type_b VARCHAR,
		start_b BIGINT,
		end_b BIGINT,
		p_value DOUBLE,
		statistic DOUBLE,
		log2_odds_ratio DOUBLE,
		dcpsi_ab DOUBLE,
		dcpsi_ba DOUBLE,
		PRIMARY KEY (gene_id, type_a, start_a, end_a, type_b, start_b, end_b)
	)`)
	return err
}
