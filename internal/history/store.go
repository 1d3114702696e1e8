package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

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
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
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

// SaveSnapshot persists one scan result and returns the assigned scan ID.
func (s *Store) SaveSnapshot(projectKey string, snapshot Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		projectKey = "default"
	}

	if snapshot.ScanID == "" {
		snapshot.ScanID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return "", fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	query := `
INSERT INTO snapshots (
  scan_id, project_key, schema_version, ts_utc, framework, file_count,
  total_lines, code_lines, comment_lines, blank_lines, error_count,
  code_ratio_pct, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(scan_id) DO UPDATE SET
  project_key=excluded.project_key,
  schema_version=excluded.schema_version,
  ts_utc=excluded.ts_utc,
  framework=excluded.framework,
  file_count=excluded.file_count,
  total_lines=excluded.total_lines,
  code_lines=excluded.code_lines,
  comment_lines=excluded.comment_lines,
  blank_lines=excluded.blank_lines,
  error_count=excluded.error_count,
  code_ratio_pct=excluded.code_ratio_pct,
  duration_ms=excluded.duration_ms
`
	err := s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			snapshot.ScanID,
			projectKey,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.Framework,
			snapshot.FileCount,
			snapshot.TotalLines,
			snapshot.CodeLines,
			snapshot.CommentLines,
			snapshot.BlankLines,
			snapshot.ErrorCount,
			snapshot.CodeRatioPct,
			snapshot.Duration.Milliseconds(),
		)
		return err
	})
	if err != nil {
		return "", err
	}
	return snapshot.ScanID, nil
}

const snapshotColumns = `
  scan_id, project_key, schema_version, ts_utc, framework, file_count,
  total_lines, code_lines, comment_lines, blank_lines, error_count,
  code_ratio_pct, duration_ms
`

// LoadSnapshots returns a project's snapshots in ascending timestamp order,
// optionally restricted to those at or after since.
func (s *Store) LoadSnapshots(projectKey string, since time.Time) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		projectKey = "default"
	}

	query := "SELECT" + snapshotColumns + "FROM snapshots WHERE project_key = ?"
	args := make([]any, 0, 2)
	args = append(args, projectKey)
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC, scan_id ASC"

	var rows *sql.Rows
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}

// LoadSnapshot returns the snapshot with the given scan ID.
func (s *Store) LoadSnapshot(scanID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow("SELECT"+snapshotColumns+"FROM snapshots WHERE scan_id = ?", scanID)
	snapshot, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return Snapshot{}, fmt.Errorf("snapshot %q not found", scanID)
	}
	return snapshot, err
}

// Projects summarizes every project key in the store, most recently
// scanned first.
func (s *Store) Projects() ([]ProjectSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT project_key,
       (SELECT framework FROM snapshots i WHERE i.project_key = o.project_key ORDER BY ts_utc DESC LIMIT 1),
       COUNT(*), MIN(ts_utc), MAX(ts_utc)
FROM snapshots o
GROUP BY project_key
ORDER BY MAX(ts_utc) DESC
`
	var rows *sql.Rows
	err := s.withRetry("list projects", func() error {
		var qErr error
		rows, qErr = s.db.Query(query)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]ProjectSummary, 0)
	for rows.Next() {
		var (
			summary  ProjectSummary
			firstRaw string
			lastRaw  string
		)
		if err := rows.Scan(&summary.ProjectKey, &summary.Framework, &summary.SnapshotCount, &firstRaw, &lastRaw); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		if summary.FirstScan, err = parseTimestamp(firstRaw); err != nil {
			return nil, err
		}
		if summary.LastScan, err = parseTimestamp(lastRaw); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project rows: %w", err)
	}

	return summaries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		snapshot   Snapshot
		tsRaw      string
		durationMS int64
	)
	if err := row.Scan(
		&snapshot.ScanID,
		&snapshot.ProjectKey,
		&snapshot.SchemaVersion,
		&tsRaw,
		&snapshot.Framework,
		&snapshot.FileCount,
		&snapshot.TotalLines,
		&snapshot.CodeLines,
		&snapshot.CommentLines,
		&snapshot.BlankLines,
		&snapshot.ErrorCount,
		&snapshot.CodeRatioPct,
		&durationMS,
	); err != nil {
		if err == sql.ErrNoRows {
			return Snapshot{}, err
		}
		return Snapshot{}, fmt.Errorf("scan snapshot row: %w", err)
	}

	ts, err := parseTimestamp(tsRaw)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot.Timestamp = ts
	snapshot.Duration = time.Duration(durationMS) * time.Millisecond
	return snapshot, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snapshot timestamp %q: %w", raw, err)
	}
	return ts.UTC(), nil
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

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}
