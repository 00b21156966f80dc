// Package sqlite persists analysis run history in a local SQLite
// database so trends survive between invocations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codesage/code-sage/internal/domain"
)

// Run is one persisted analysis run.
type Run struct {
	ID          string
	Timestamp   time.Time
	RootPath    string
	TotalFiles  int
	FailedFiles int
	TotalIssues int
	Critical    int
	High        int
	Medium      int
	Low         int
	Info        int
	Duration    time.Duration
}

// Store implements run-history persistence using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores one row per analysis run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		root_path TEXT NOT NULL,
		total_files INTEGER NOT NULL,
		failed_files INTEGER NOT NULL,
		total_issues INTEGER NOT NULL,
		critical_count INTEGER NOT NULL DEFAULT 0,
		high_count INTEGER NOT NULL DEFAULT 0,
		medium_count INTEGER NOT NULL DEFAULT 0,
		low_count INTEGER NOT NULL DEFAULT 0,
		info_count INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root_path);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveResult records a finished analysis as a run row and returns the
// generated run id.
func (s *Store) SaveResult(ctx context.Context, result *domain.ProjectResult) (string, error) {
	run := Run{
		ID:          uuid.New().String(),
		Timestamp:   result.GeneratedAt,
		RootPath:    result.RootPath,
		TotalFiles:  result.TotalFiles,
		FailedFiles: result.FailedFiles,
		TotalIssues: result.TotalIssues,
		Critical:    result.CountBySeverity(domain.SeverityCritical),
		High:        result.CountBySeverity(domain.SeverityHigh),
		Medium:      result.CountBySeverity(domain.SeverityMedium),
		Low:         result.CountBySeverity(domain.SeverityLow),
		Info:        result.CountBySeverity(domain.SeverityInfo),
		Duration:    result.Duration,
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	query := `
		INSERT INTO runs (run_id, timestamp, root_path, total_files, failed_files, total_issues,
			critical_count, high_count, medium_count, low_count, info_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Timestamp.Unix(),
		run.RootPath,
		run.TotalFiles,
		run.FailedFiles,
		run.TotalIssues,
		run.Critical,
		run.High,
		run.Medium,
		run.Low,
		run.Info,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first. A limit <= 0
// defaults to 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT run_id, timestamp, root_path, total_files, failed_files, total_issues,
			critical_count, high_count, medium_count, low_count, info_count, duration_ms
		FROM runs
		ORDER BY timestamp DESC, run_id
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var timestamp int64
		var durationMs int64
		if err := rows.Scan(
			&run.ID,
			&timestamp,
			&run.RootPath,
			&run.TotalFiles,
			&run.FailedFiles,
			&run.TotalIssues,
			&run.Critical,
			&run.High,
			&run.Medium,
			&run.Low,
			&run.Info,
			&durationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = time.Unix(timestamp, 0)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
