package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"layerguard/internal/shared/util"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// RunRecord summarizes one completed check.
type RunRecord struct {
	ID             string
	ProjectRoot    string
	CommitHash     string
	Timestamp      time.Time
	FilesAnalyzed  int
	ViolationCount int
	Passed         bool
	Duration       time.Duration
	RuleCounts     map[string]int
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

	// busy_timeout + WAL keep watch-mode writes from tripping over readers.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

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

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun stores a run and its per-rule counts, assigning an ID and
// timestamp when they are missing.
func (s *Store) SaveRun(ctx context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ProjectRoot) == "" {
		return fmt.Errorf("run project root must not be empty")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	return s.withRetry("save run", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, project_root, commit_hash, ts_utc, files_analyzed, violation_count, passed, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.ProjectRoot,
			run.CommitHash,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.FilesAnalyzed,
			run.ViolationCount,
			boolToInt(run.Passed),
			run.Duration.Milliseconds(),
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, rule := range util.SortedStringKeys(run.RuleCounts) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_rule_counts (run_id, rule_id, violation_count) VALUES (?, ?, ?)`,
				run.ID, rule, run.RuleCounts[rule],
			); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

// LoadRuns returns the newest runs for a project first. A limit of zero or
// less returns every run.
func (s *Store) LoadRuns(ctx context.Context, projectRoot string, limit int) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT id, project_root, commit_hash, ts_utc, files_analyzed, violation_count, passed, duration_ms
FROM runs
WHERE project_root = ?
ORDER BY ts_utc DESC, id ASC`
	args := []any{projectRoot}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var runs []RunRecord
	err := s.withRetry("load runs", func() error {
		runs = runs[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				run        RunRecord
				tsRaw      string
				passed     int
				durationMS int64
			)
			if err := rows.Scan(&run.ID, &run.ProjectRoot, &run.CommitHash, &tsRaw, &run.FilesAnalyzed, &run.ViolationCount, &passed, &durationMS); err != nil {
				return fmt.Errorf("scan run row: %w", err)
			}
			ts, err := time.Parse(time.RFC3339Nano, tsRaw)
			if err != nil {
				return fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
			}
			run.Timestamp = ts.UTC()
			run.Passed = passed != 0
			run.Duration = time.Duration(durationMS) * time.Millisecond
			runs = append(runs, run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	for i := range runs {
		counts, err := s.loadRuleCounts(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].RuleCounts = counts
	}
	return runs, nil
}

func (s *Store) loadRuleCounts(ctx context.Context, runID string) (map[string]int, error) {
	counts := make(map[string]int)
	err := s.withRetry("load rule counts", func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT rule_id, violation_count FROM run_rule_counts WHERE run_id = ?`, runID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				rule  string
				count int
			)
			if err := rows.Scan(&rule, &count); err != nil {
				return fmt.Errorf("scan rule count row: %w", err)
			}
			counts[rule] = count
		}
		return rows.Err()
	})
	return counts, err
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
