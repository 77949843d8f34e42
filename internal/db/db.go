package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
	sqlite3 "modernc.org/sqlite/lib"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	security_stamp TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL UNIQUE,
	author TEXT NOT NULL DEFAULT '',
	publication_year INTEGER NOT NULL DEFAULT 0,
	views_count INTEGER NOT NULL DEFAULT 0 CHECK (views_count >= 0)
);

CREATE INDEX IF NOT EXISTS idx_books_popularity ON books (views_count DESC, id);
`

// Connect opens the SQLite database at path and verifies it is reachable.
// An in-memory database is pinned to one connection so every query sees the
// same data.
func Connect(ctx context.Context, path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		pool.SetMaxOpenConns(1)
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	slog.InfoContext(ctx, "connected to database", "db.path", path)
	return pool, nil
}

// InitializeDB enables foreign keys and creates the schema if missing.
func InitializeDB(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	slog.InfoContext(ctx, "DB connection initialized and schema verified.")
	return nil
}

// ErrUniqueViolation marks a duplicate key detected outside the driver.
var ErrUniqueViolation = errors.New("unique constraint violation")

// IsUniqueViolation reports whether err comes from a UNIQUE constraint. The
// driver reports extended result codes, so the check uses the code rather
// than the message.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
