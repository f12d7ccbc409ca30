// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

var ErrUnknownDialect = errors.New("unknown database type")

// ParseDialect maps a configured database type onto a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch Dialect(name) {
	case Postgres, SQLite:
		return Dialect(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDialect, name)
}

// Open connects to the database and verifies the connection.
func Open(d Dialect, url string) (*sql.DB, error) {
	conn, err := sql.Open(string(d), url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d, err)
	}

	if d == SQLite {
		// sqlite allows a single writer; a shared connection serializes
		// transactions instead of failing them with SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return conn, nil
}

// LockVoterRow takes an exclusive lock on the voter row for the rest of tx.
// Postgres uses SELECT ... FOR UPDATE; sqlite has no row locks, so a no-op
// write promotes the transaction to the database write lock instead.
func (d Dialect) LockVoterRow(ctx context.Context, tx *sql.Tx, voterID int64) error {
	var err error
	if d == SQLite {
		_, err = tx.ExecContext(ctx, `UPDATE voter SET has_voted = has_voted WHERE id = $1`, voterID)
	} else {
		_, err = tx.ExecContext(ctx, `SELECT id FROM voter WHERE id = $1 FOR UPDATE`, voterID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock voter %d: %w", voterID, err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique constraint failure from
// either supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}
