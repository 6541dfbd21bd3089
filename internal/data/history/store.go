package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName         = "sqlite"
	maxAttempts        = 5
	defaultBusyTimeout = 2 * time.Second
	defaultProjectKey  = "default"
)

// Store persists scan summaries and per-file scores in SQLite.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Open creates or migrates the database at path. A zero busyTimeout uses
// two seconds.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL keep watch-mode saves from tripping over trend reads.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
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

// SaveScan writes the scan row and its file rows in one transaction. Saving
// the same scan id again replaces the earlier rows.
func (s *Store) SaveScan(ctx context.Context, scan Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(scan.ID) == "" {
		return fmt.Errorf("scan id must not be empty")
	}
	scan.ProjectKey = projectKeyOrDefault(scan.ProjectKey)
	if scan.Timestamp.IsZero() {
		scan.Timestamp = time.Now().UTC()
	}
	commitTS := ""
	if !scan.CommitTimestamp.IsZero() {
		commitTS = scan.CommitTimestamp.UTC().Format(time.RFC3339Nano)
	}

	return s.withRetry("save scan", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, scan.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scans (
  id, project_key, ts_utc, commit_hash, commit_ts_utc, repo_score, mean_score, weighted_score,
  min_score, max_score, high_risk_count, medium_risk_count, analyzed_count, skipped_count, errored_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			scan.ID,
			scan.ProjectKey,
			scan.Timestamp.UTC().Format(time.RFC3339Nano),
			scan.CommitHash,
			commitTS,
			scan.Score,
			scan.Mean,
			scan.Weighted,
			scan.Min,
			scan.Max,
			scan.HighRisk,
			scan.MediumRisk,
			scan.Analyzed,
			scan.Skipped,
			scan.Errored,
		); err != nil {
			return err
		}

		if len(scan.Files) > 0 {
			stmt, err := tx.PrepareContext(ctx, `INSERT INTO file_scores (scan_id, path, score, label) VALUES (?, ?, ?, ?)`)
			if err != nil {
				return err
			}
			defer stmt.Close()
			for _, f := range scan.Files {
				if _, err := stmt.ExecContext(ctx, scan.ID, f.Path, f.Score, f.Label); err != nil {
					return fmt.Errorf("insert file score %q: %w", f.Path, err)
				}
			}
		}
		return tx.Commit()
	})
}

// LoadScans returns the project's scans at or after since, oldest first.
// File rows are not loaded; use LoadFileScores for those.
func (s *Store) LoadScans(ctx context.Context, projectKey string, since time.Time) ([]Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT
  id, project_key, ts_utc, commit_hash, commit_ts_utc, repo_score, mean_score, weighted_score,
  min_score, max_score, high_risk_count, medium_risk_count, analyzed_count, skipped_count, errored_count
FROM scans
WHERE project_key = ?`
	args := []any{projectKeyOrDefault(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC, id ASC"

	var rows *sql.Rows
	err := s.withRetry("load scans", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := make([]Scan, 0)
	for rows.Next() {
		var (
			tsRaw       string
			commitTSRaw string
			scan        Scan
		)
		if err := rows.Scan(
			&scan.ID,
			&scan.ProjectKey,
			&tsRaw,
			&scan.CommitHash,
			&commitTSRaw,
			&scan.Score,
			&scan.Mean,
			&scan.Weighted,
			&scan.Min,
			&scan.Max,
			&scan.HighRisk,
			&scan.MediumRisk,
			&scan.Analyzed,
			&scan.Skipped,
			&scan.Errored,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse scan timestamp %q: %w", tsRaw, err)
		}
		scan.Timestamp = ts.UTC()
		if commitTSRaw != "" {
			commitTS, err := time.Parse(time.RFC3339Nano, commitTSRaw)
			if err != nil {
				return nil, fmt.Errorf("parse commit timestamp %q: %w", commitTSRaw, err)
			}
			scan.CommitTimestamp = commitTS.UTC()
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan rows: %w", err)
	}
	return scans, nil
}

// LoadFileScores returns the file rows of one scan, highest score first.
func (s *Store) LoadFileScores(ctx context.Context, scanID string) ([]FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load file scores", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx,
			`SELECT path, score, label FROM file_scores WHERE scan_id = ? ORDER BY score DESC, path ASC`, scanID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FileRecord, 0)
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.Path, &rec.Score, &rec.Label); err != nil {
			return nil, fmt.Errorf("file score row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
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

func projectKeyOrDefault(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return defaultProjectKey
	}
	return key
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
