package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one completed transcription run.
type Run struct {
	ID           int64
	SourcePath   string
	OutputPath   string
	SegmentCount int
	Language     string
	Elapsed      time.Duration
	CreatedAt    time.Time
}

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_path TEXT NOT NULL,
    output_path TEXT NOT NULL,
    segment_count INTEGER NOT NULL,
    language TEXT NOT NULL DEFAULT '',
    elapsed_ms INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
)`

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a completed run and returns its id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (source_path, output_path, segment_count, language, elapsed_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.SourcePath,
		run.OutputPath,
		run.SegmentCount,
		run.Language,
		run.Elapsed.Milliseconds(),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source_path, output_path, segment_count, language, elapsed_ms, created_at
         FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var elapsedMS int64
		var createdAt string
		if err := rows.Scan(&run.ID, &run.SourcePath, &run.OutputPath, &run.SegmentCount, &run.Language, &elapsedMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			run.CreatedAt = ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
