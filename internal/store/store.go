// Package store persists accumulated system records and rescan history in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/atikulmunna/edlog/internal/systems"
)

const schema = `
CREATE TABLE IF NOT EXISTS systems (
  system_key     TEXT PRIMARY KEY,
  system_name    TEXT NOT NULL,
  system_address INTEGER NOT NULL,
  record         TEXT NOT NULL,
  updated_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS systems_name ON systems(system_name);

CREATE TABLE IF NOT EXISTS rescan_runs (
  id          TEXT PRIMARY KEY,
  mode        TEXT NOT NULL,
  started_at  INTEGER NOT NULL,
  finished_at INTEGER NOT NULL,
  cursor_from INTEGER,
  cursor_to   INTEGER,
  events      INTEGER NOT NULL,
  systems     INTEGER NOT NULL,
  gaps        INTEGER NOT NULL
);
`

// Run modes.
const (
	ModeIncremental = "incremental"
	ModeFull        = "full"
)

// Run describes one completed rescan.
type Run struct {
	ID         string     `json:"id"`
	Mode       string     `json:"mode"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt time.Time  `json:"finishedAt"`
	CursorFrom *time.Time `json:"cursorFrom,omitempty"`
	CursorTo   *time.Time `json:"cursorTo,omitempty"`
	Events     int        `json:"events"`
	Systems    int        `json:"systems"`
	Gaps       int        `json:"gaps"`
}

// Store is the system cache.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRecords upserts records by system identity in one transaction.
func (s *Store) SaveRecords(ctx context.Context, records []systems.SystemRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO systems (system_key, system_name, system_address, record, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(system_key) DO UPDATE SET
		  system_name = excluded.system_name,
		  record = excluded.record,
		  updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := toMillis(time.Now())
	for _, r := range records {
		key := r.Key()
		if key.IsZero() {
			continue
		}
		blob, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if _, err := stmt.ExecContext(ctx, key.ID(), r.SystemName, r.SystemAddress, string(blob), now); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRecords returns every cached system ordered by name, then address.
func (s *Store) LoadRecords(ctx context.Context) ([]systems.SystemRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT record FROM systems ORDER BY system_name, system_address`)
	if err != nil {
		return nil, fmt.Errorf("query systems: %w", err)
	}
	defer rows.Close()

	var out []systems.SystemRecord
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan system: %w", err)
		}
		var r systems.SystemRecord
		if err := json.Unmarshal([]byte(blob), &r); err != nil {
			return nil, fmt.Errorf("decode system: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindSystem looks a system up by name, case-insensitively.
func (s *Store) FindSystem(ctx context.Context, name string) (systems.SystemRecord, bool, error) {
	var blob string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT record FROM systems WHERE system_name = ? COLLATE NOCASE ORDER BY updated_at DESC LIMIT 1`,
		name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return systems.SystemRecord{}, false, nil
	}
	if err != nil {
		return systems.SystemRecord{}, false, fmt.Errorf("find system %q: %w", name, err)
	}
	var r systems.SystemRecord
	if err := json.Unmarshal([]byte(blob), &r); err != nil {
		return systems.SystemRecord{}, false, fmt.Errorf("decode system: %w", err)
	}
	return r, true, nil
}

// Clear removes every cached system. Run history is kept.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM systems`); err != nil {
		return fmt.Errorf("clear systems: %w", err)
	}
	return nil
}

// RecordRun stores run, assigning an id when it has none.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Mode == "" {
		run.Mode = ModeIncremental
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO rescan_runs (id, mode, started_at, finished_at, cursor_from, cursor_to, events, systems, gaps)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode,
		toMillis(run.StartedAt), toMillis(run.FinishedAt),
		nullMillis(run.CursorFrom), nullMillis(run.CursorTo),
		run.Events, run.Systems, run.Gaps,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// LastRun returns the most recently finished run.
func (s *Store) LastRun(ctx context.Context) (Run, bool, error) {
	var (
		run                  Run
		started, finished    int64
		cursorFrom, cursorTo sql.NullInt64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, mode, started_at, finished_at, cursor_from, cursor_to, events, systems, gaps
		 FROM rescan_runs ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.Mode, &started, &finished, &cursorFrom, &cursorTo, &run.Events, &run.Systems, &run.Gaps)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("last run: %w", err)
	}
	run.StartedAt = fromMillis(started)
	run.FinishedAt = fromMillis(finished)
	run.CursorFrom = fromNullMillis(cursorFrom)
	run.CursorTo = fromNullMillis(cursorTo)
	return run, true, nil
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil || t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func fromNullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}
