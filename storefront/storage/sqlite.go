package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	scope TEXT NOT NULL,
	key   TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (scope, key)
)`

// SQLite persists a scope in a local database file; the CLI default.
type SQLite struct {
	db      *sql.DB
	scope   string
	timeout time.Duration
}

// OpenSQLite opens (creating if needed) the database at path. Use ":memory:" in tests.
func OpenSQLite(path, scope string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("open", err)
	}
	// one writer keeps SetItems transactions from tripping SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, scope: scope, timeout: 5 * time.Second}
	ctx, cancel := s.ctx()
	defer cancel()

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", kvSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, unavailable("init", fmt.Errorf("%s: %w", stmt, err))
		}
	}
	return s, nil
}

func (s *SQLite) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *SQLite) Get(key string) (string, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE scope = ? AND key = ?`, s.scope, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", err)
	}
	return value, true, nil
}

func (s *SQLite) Set(key, value string) error {
	return s.SetItems(map[string]string{key: value})
}

func (s *SQLite) SetItems(items map[string]string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO kv (scope, key, value) VALUES (?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return unavailable("prepare", err)
	}
	defer stmt.Close()

	for k, v := range items {
		if _, err := stmt.ExecContext(ctx, s.scope, k, v); err != nil {
			return unavailable("set", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func (s *SQLite) Remove(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE scope = ? AND key = ?`, s.scope, key); err != nil {
		return unavailable("remove", err)
	}
	return nil
}

func (s *SQLite) Clear() error {
	ctx, cancel := s.ctx()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE scope = ?`, s.scope); err != nil {
		return unavailable("clear", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
