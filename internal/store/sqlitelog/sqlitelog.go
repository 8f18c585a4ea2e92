// Package sqlitelog implements the rolling activity log on SQLite.
// Records are append-only and trimmed to a bounded retention window on
// every write; readers poll incrementally with ListSince.
package sqlitelog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jotlog/jotlog/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity_log (
    id          TEXT PRIMARY KEY,
    ts          TEXT NOT NULL,
    service     TEXT NOT NULL,
    status      TEXT NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    details     TEXT NOT NULL DEFAULT '',
    request     TEXT NOT NULL DEFAULT '',
    response    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_activity_log_ts ON activity_log (ts);
`

// Store is the SQLite-backed activity log.
type Store struct {
	db        *sql.DB
	retention time.Duration
	now       func() time.Time
}

// Open opens (or creates) the log database at path and applies the
// schema. WAL keeps concurrent polling readers cheap. Records older
// than retention are trimmed on append; zero retention keeps forever.
func Open(path string, retention time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, retention: retention, now: time.Now}, nil
}

// Append inserts rec, assigning id and timestamp when absent, then
// trims records older than the retention window.
func (s *Store) Append(ctx context.Context, rec model.LogRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp == "" {
		rec.Timestamp = model.FormatTimestamp(s.now())
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_log (id, ts, service, status, duration_ms, details, request, response) VALUES (?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Timestamp, rec.Service, rec.Status, rec.DurationMs, rec.Details, rec.Request, rec.Response)
	if err != nil {
		return err
	}
	return s.trim(ctx)
}

// ListSince returns records with a timestamp strictly after since,
// oldest first. An empty since returns everything retained.
func (s *Store) ListSince(ctx context.Context, since string) ([]model.LogRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, service, status, duration_ms, details, request, response FROM activity_log WHERE ts > ? ORDER BY ts ASC, id ASC`,
		since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LogRecord
	for rows.Next() {
		var r model.LogRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Service, &r.Status, &r.DurationMs, &r.Details, &r.Request, &r.Response); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM activity_log`)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) trim(ctx context.Context) error {
	if s.retention <= 0 {
		return nil
	}
	cutoff := model.FormatTimestamp(s.now().Add(-s.retention))
	_, err := s.db.ExecContext(ctx, `DELETE FROM activity_log WHERE ts < ?`, cutoff)
	return err
}
