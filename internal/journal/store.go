package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}
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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Begin inserts a running entry and returns it with a fresh ID and start time.
func (s *Store) Begin(ctx context.Context, operation, source, destination string) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		Operation:   operation,
		Source:      source,
		Destination: destination,
		Status:      StatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, operation, source, destination, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Operation, run.Source, run.Destination, run.Status, formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish records the outcome of run. A nil runErr marks it succeeded unless
// the status was already set to a terminal value by the caller.
func (s *Store) Finish(ctx context.Context, run *Run, runErr error) error {
	if run == nil {
		return errors.New("finish run: nil run")
	}
	run.FinishedAt = time.Now().UTC()
	switch {
	case runErr != nil:
		run.Status = StatusFailed
		run.Error = runErr.Error()
	case run.Status == StatusRunning || run.Status == "":
		run.Status = StatusSucceeded
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET episodes = ?, frames = ?, assets_copied = ?, assets_skipped = ?,
            bytes_copied = ?, status = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		run.Episodes, run.Frames, run.AssetsCopied, run.AssetsSkipped,
		run.BytesCopied, run.Status, nullString(run.Error), formatTime(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run: %s not found", run.ID)
	}
	return nil
}

// Get returns the run with id, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	query := selectRun + " ORDER BY started_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

const selectRun = `SELECT id, operation, source, destination, episodes, frames,
    assets_copied, assets_skipped, bytes_copied, status, error_message, started_at, finished_at
    FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		errMsg     sql.NullString
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.Operation, &run.Source, &run.Destination, &run.Episodes, &run.Frames,
		&run.AssetsCopied, &run.AssetsSkipped, &run.BytesCopied, &run.Status, &errMsg,
		&startedAt, &finishedAt,
	); err != nil {
		return nil, err
	}
	run.Error = errMsg.String
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	return &run, nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
