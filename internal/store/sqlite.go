package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteRunStore implements RunStore using SQLite for persistence.
type SQLiteRunStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteRunStore creates a run store backed by dir/runs.db, creating the
// directory and schema as needed.
func NewSQLiteRunStore(dir string) (*SQLiteRunStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dbPath := filepath.Join(dir, "runs.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath}, nil
}

// initSchema creates the runs and winners tables if they do not exist.
func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	seed       INTEGER NOT NULL,
	p          REAL NOT NULL,
	recipe     TEXT
);

CREATE TABLE IF NOT EXISTS winners (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	round   INTEGER NOT NULL,
	area    TEXT NOT NULL,
	winners TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_winners_run ON winners(run_id, round, area);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// CreateRun registers a run, generating an ID if absent.
func (s *SQLiteRunStore) CreateRun(ctx context.Context, run Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.ID == "" {
		run.ID = fmt.Sprintf("run-%d", run.CreatedAt.UnixNano())
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, seed, p, recipe) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), int64(run.Seed), run.P, run.Recipe)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return run.ID, nil
}

// RecordWinners appends one winner record to a run.
func (s *SQLiteRunStore) RecordWinners(ctx context.Context, runID string, rec WinnerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(rec.Winners)
	if err != nil {
		return fmt.Errorf("failed to marshal winners: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO winners (run_id, round, area, winners)
		 SELECT ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM runs WHERE id = ?)`,
		runID, rec.Round, rec.Area, string(data), runID)
	if err != nil {
		return fmt.Errorf("failed to insert winners: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check insert: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil if not found.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, seed, p, recipe FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *SQLiteRunStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, seed, p, recipe FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetWinners returns a run's winner records in (round, area) order.
func (s *SQLiteRunStore) GetWinners(ctx context.Context, runID, area string) ([]WinnerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT round, area, winners FROM winners WHERE run_id = ?`
	args := []any{runID}
	if area != "" {
		query += ` AND area = ?`
		args = append(args, area)
	}
	query += ` ORDER BY round, area`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query winners: %w", err)
	}
	defer rows.Close()

	records := make([]WinnerRecord, 0)
	for rows.Next() {
		var rec WinnerRecord
		var data string
		if err := rows.Scan(&rec.Round, &rec.Area, &data); err != nil {
			return nil, fmt.Errorf("failed to scan winners: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rec.Winners); err != nil {
			return nil, fmt.Errorf("failed to unmarshal winners: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// scanner abstracts sql.Row and sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var createdAt string
	var seed int64
	if err := row.Scan(&run.ID, &createdAt, &seed, &run.P, &run.Recipe); err != nil {
		return nil, err
	}
	run.Seed = uint64(seed)
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	run.CreatedAt = t
	return &run, nil
}
