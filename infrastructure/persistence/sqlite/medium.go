// Package sqlite stores the mind map as a single row in an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"pgy3-backend/infrastructure/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS mindmap_documents (
	key        TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// DefaultKey is the row key used when none is configured.
const DefaultKey = "default"

type Medium struct {
	db  *sql.DB
	key string
}

// Open opens or creates the database at path and applies the schema. The
// special path ":memory:" opens a private in-memory database.
func Open(path, key string) (*Medium, error) {
	if key == "" {
		key = DefaultKey
	}

	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every connection to ":memory:" is a different database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite db: %w", err)
	}
	return &Medium{db: db, key: key}, nil
}

func (m *Medium) Name() string { return "sqlite" }

func (m *Medium) Close() error {
	return m.db.Close()
}

func (m *Medium) Read(ctx context.Context) ([]byte, error) {
	var body string
	err := m.db.QueryRowContext(ctx,
		`SELECT body FROM mindmap_documents WHERE key = ?`, m.key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return []byte(body), nil
}

func (m *Medium) Write(ctx context.Context, data []byte) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO mindmap_documents (key, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		m.key, string(data), now(),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (m *Medium) Create(ctx context.Context, data []byte) (bool, error) {
	res, err := m.db.ExecContext(ctx,
		`INSERT INTO mindmap_documents (key, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO NOTHING`,
		m.key, string(data), now(),
	)
	if err != nil {
		return false, fmt.Errorf("insert document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert document: %w", err)
	}
	return n == 1, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
