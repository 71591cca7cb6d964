// Package postgres stores the mind map as a single JSONB row in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"pgy3-backend/infrastructure/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS mindmap_documents (
	key        TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// DefaultKey is the row key used when none is configured.
const DefaultKey = "default"

type Medium struct {
	db  *sql.DB
	key string
}

// Open connects to dsn, verifies the connection and applies the schema.
func Open(ctx context.Context, dsn, key string) (*Medium, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	m, err := New(ctx, db, key)
	if err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

// New wraps an existing connection pool and applies the schema.
func New(ctx context.Context, db *sql.DB, key string) (*Medium, error) {
	if key == "" {
		key = DefaultKey
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &Medium{db: db, key: key}, nil
}

func (m *Medium) Name() string { return "postgres" }

func (m *Medium) Close() error {
	return m.db.Close()
}

// Read returns the stored body. JSONB normalizes key order and whitespace,
// which the document codec does not depend on.
func (m *Medium) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := m.db.QueryRowContext(ctx,
		`SELECT body::text FROM mindmap_documents WHERE key = $1`, m.key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return body, nil
}

func (m *Medium) Write(ctx context.Context, data []byte) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO mindmap_documents (key, body, updated_at) VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		m.key, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (m *Medium) Create(ctx context.Context, data []byte) (bool, error) {
	res, err := m.db.ExecContext(ctx,
		`INSERT INTO mindmap_documents (key, body, updated_at) VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (key) DO NOTHING`,
		m.key, string(data), time.Now().UTC(),
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
