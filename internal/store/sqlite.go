package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/nbcassistant/backend/internal/model/conversation"
)

const schema = `
CREATE TABLE IF NOT EXISTS queries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_queries_user ON queries(user_id, created_at);
`

// SQLite backs the conversation log with a single-file database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Append(ctx context.Context, rec conversation.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queries (id, user_id, question, answer, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Question, rec.Answer, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: append: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLite) ListByUser(ctx context.Context, userID string) ([]conversation.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, question, answer, created_at FROM queries
		 WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	records := make([]conversation.Record, 0, 16)
	for rows.Next() {
		var rec conversation.Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Question, &rec.Answer, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrUnavailable, err)
		}
		// A row with a mangled timestamp keeps its zero value; renderers
		// show a sentinel for it instead of failing the whole fetch.
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %v", ErrUnavailable, err)
	}

	return records, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
