// # internal/history/store.go

// Package history persists one row per validation run, so repeated gate
// runs against a package can be inspected for trends.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Run is the stored summary of one validation run.
type Run struct {
	ID            string
	PkgDir        string
	StartedAt     time.Time
	Duration      time.Duration
	DeclaredCount int
	ActualCount   int
	Outcome       string
	FailureCode   string
	Detail        string
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("run id must not be empty")
	}

	_, err := s.db.Exec(`
INSERT INTO runs (id, pkg_dir, started_at_utc, duration_ms, declared_count, actual_count, outcome, failure_code, detail)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.PkgDir,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.DeclaredCount,
		run.ActualCount,
		run.Outcome,
		run.FailureCode,
		run.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns the latest runs for a package directory, newest
// first.
func (s *Store) RecentRuns(pkgDir string, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
SELECT id, pkg_dir, started_at_utc, duration_ms, declared_count, actual_count, outcome, failure_code, detail
FROM runs
WHERE pkg_dir = ?
ORDER BY started_at_utc DESC
LIMIT ?`, pkgDir, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		var durationMs int64
		if err := rows.Scan(&run.ID, &run.PkgDir, &startedAt, &durationMs, &run.DeclaredCount, &run.ActualCount, &run.Outcome, &run.FailureCode, &run.Detail); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
