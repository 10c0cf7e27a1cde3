// Package store provides structured access and migrations for the SQLite
// persistence layer holding completed RCA analyses. Persistence is a caller
// concern: the synthesis engine itself never touches the store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database connection
type Store struct {
	*sql.DB
	path string
}

// Analysis is one persisted synthesis run.
type Analysis struct {
	ID              string          `json:"id"`
	TraceID         string          `json:"trace_id"`
	SpanCount       int             `json:"span_count"`
	ErrorCount      int             `json:"error_count"`
	RootCauseSpan   string          `json:"root_cause_span,omitempty"`
	HypothesisCount int             `json:"hypothesis_count"`
	Summary         string          `json:"summary"`
	Result          json.RawMessage `json:"result"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Open creates a new database connection
func Open(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		DB:   db,
		path: dbPath,
	}, nil
}

// Migrate runs database migrations
func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			trace_id TEXT NOT NULL,
			span_count INTEGER NOT NULL,
			error_count INTEGER NOT NULL,
			root_cause_span TEXT,
			hypothesis_count INTEGER NOT NULL,
			summary TEXT NOT NULL,
			result_json TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_trace ON analyses(trace_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Save persists one completed analysis.
func (s *Store) Save(a *Analysis) error {
	_, err := s.Exec(
		`INSERT INTO analyses (id, trace_id, span_count, error_count, root_cause_span, hypothesis_count, summary, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TraceID, a.SpanCount, a.ErrorCount, a.RootCauseSpan, a.HypothesisCount, a.Summary, string(a.Result), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Get fetches one analysis by id.
func (s *Store) Get(id string) (*Analysis, error) {
	row := s.QueryRow(
		`SELECT id, trace_id, span_count, error_count, root_cause_span, hypothesis_count, summary, result_json, created_at
		 FROM analyses WHERE id = ?`, id)

	var a Analysis
	var resultJSON string
	if err := row.Scan(&a.ID, &a.TraceID, &a.SpanCount, &a.ErrorCount, &a.RootCauseSpan, &a.HypothesisCount, &a.Summary, &resultJSON, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("analysis %s not found", id)
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}
	a.Result = json.RawMessage(resultJSON)
	return &a, nil
}

// List returns the most recent analyses, newest first.
func (s *Store) List(limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Query(
		`SELECT id, trace_id, span_count, error_count, root_cause_span, hypothesis_count, summary, result_json, created_at
		 FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		var resultJSON string
		if err := rows.Scan(&a.ID, &a.TraceID, &a.SpanCount, &a.ErrorCount, &a.RootCauseSpan, &a.HypothesisCount, &a.Summary, &resultJSON, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		a.Result = json.RawMessage(resultJSON)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.DB.Close()
}
