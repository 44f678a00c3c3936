// Package duckdb persists retrieved proteins, their cross-references,
// splice variants and feature chains in DuckDB (queryable, append-only).
// Every write is tagged with a run id so that runs can be compared.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for retrieved proteins.
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
			return nil, fmt.Errorf("create store directory: %w", err)
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

// Path returns the database file, "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		origin VARCHAR,
		started_at TIMESTAMP,
		accessions BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS proteins (
		run_id VARCHAR,
		ac VARCHAR,
		id VARCHAR,
		source VARCHAR,
		tax_id BIGINT,
		organism VARCHAR,
		description VARCHAR,
		release_version VARCHAR,
		last_annotation_update TIMESTAMP,
		last_sequence_update TIMESTAMP,
		genes VARCHAR,
		synonyms VARCHAR,
		sequence VARCHAR,
		sequence_length BIGINT,
		crc64 VARCHAR,
		PRIMARY KEY (run_id, ac)
	)`,
	`CREATE TABLE IF NOT EXISTS protein_xrefs (
		run_id VARCHAR,
		ac VARCHAR,
		db_name VARCHAR,
		xref_ac VARCHAR,
		description VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS protein_isoforms (
		run_id VARCHAR,
		master_ac VARCHAR,
		ac VARCHAR,
		secondary_acs VARCHAR,
		synonyms VARCHAR,
		note VARCHAR,
		sequence VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS protein_chains (
		run_id VARCHAR,
		master_ac VARCHAR,
		id VARCHAR,
		chain_type VARCHAR,
		description VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		sequence VARCHAR
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
