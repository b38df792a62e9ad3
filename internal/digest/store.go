// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-digest/pkg/types"
)

const dbFile = "digests.db"

// Store archives digest runs in SQLite so past digests can be inspected
// without trawling JSON files.
type Store struct {
	db *sql.DB
}

// RunRecord is one archived digest run.
type RunRecord struct {
	ID          int64
	Period      types.Period
	GeneratedAt time.Time
	PaperCount  int
	Status      string
}

// NewStore opens or creates the archive database at dir/digests.db.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			period TEXT NOT NULL,
			generated_at TEXT NOT NULL,
			paper_count INTEGER NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_papers (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			title TEXT NOT NULL,
			authors TEXT,
			source TEXT,
			source_id TEXT,
			url TEXT,
			relevance_score REAL,
			summary TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_papers_run_id ON run_papers(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun archives one digest run and its papers in a transaction.
func (s *Store) RecordRun(d types.Digest, status string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (period, generated_at, paper_count, status) VALUES (?, ?, ?, ?)`,
		string(d.Period), d.GeneratedAt.Format(time.RFC3339), d.PaperCount, status,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, p := range d.Papers {
		if _, err := tx.Exec(
			`INSERT INTO run_papers (run_id, title, authors, source, source_id, url, relevance_score, summary)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, p.Title, strings.Join(p.Authors, ", "), string(p.Source),
			p.SourceID, p.URL, p.RelevanceScore, p.Summary,
		); err != nil {
			return 0, fmt.Errorf("inserting paper: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, period, generated_at, paper_count, status
		 FROM runs ORDER BY generated_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var period, generatedAt string
		if err := rows.Scan(&r.ID, &period, &generatedAt, &r.PaperCount, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Period = types.Period(period)
		if t, err := time.Parse(time.RFC3339, generatedAt); err == nil {
			r.GeneratedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SeenTitles returns how many archived papers share the given source ID.
// Used by diagnostics to spot feeds that resurface old papers.
func (s *Store) SeenTitles(sourceID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT count(*) FROM run_papers WHERE source_id = ?`, sourceID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return count, nil
}
