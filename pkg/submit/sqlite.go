package submit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteQueue stores entries in a local SQLite database, one row per entry
// with the full entry as a JSON payload.
type SQLiteQueue struct {
	db   *sql.DB
	path string
}

// NewSQLiteQueue opens (creating if needed) the database at path.
func NewSQLiteQueue(ctx context.Context, path string) (*SQLiteQueue, error) {
	if path == "" {
		path = "submissions.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, stmt := range []string{
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			custom INTEGER NOT NULL,
			submitted_at_unixms INTEGER NOT NULL,
			payload_json TEXT NOT NULL
		);`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return &SQLiteQueue{db: db, path: path}, nil
}

func (q *SQLiteQueue) String() string { return "sqlite" }

// Path returns the database file.
func (q *SQLiteQueue) Path() string { return q.path }

func (q *SQLiteQueue) Append(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	custom := 0
	if e.Custom() {
		custom = 1
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO submissions(id, category, custom, submitted_at_unixms, payload_json) VALUES(?,?,?,?,?)`,
		e.ID, e.Category, custom, e.SubmittedAt.UnixMilli(), string(payload))
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// List returns all entries in submission order.
func (q *SQLiteQueue) List(ctx context.Context) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT payload_json FROM submissions ORDER BY submitted_at_unixms, rowid`)
	if err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var e Entry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Since returns entries submitted at or after t.
func (q *SQLiteQueue) Since(ctx context.Context, t time.Time) ([]Entry, error) {
	all, err := q.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if !e.SubmittedAt.Before(t) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (q *SQLiteQueue) Close() error { return q.db.Close() }
