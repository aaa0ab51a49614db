// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the journal database and verifies the connection
func Open(ctx context.Context, dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case TypeSQLite, "":
		driver = "sqlite"
	case TypePostgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// One writer; also keeps :memory: databases on a single connection
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Decided rounds
CREATE TABLE IF NOT EXISTS round_result (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    round_id TEXT NOT NULL UNIQUE,
    mode TEXT NOT NULL CHECK (mode IN ('ranked', 'binary')),
    kind TEXT NOT NULL CHECK (kind IN ('decided', 'no_quorum', 'tie')),
    winner TEXT,
    total_votes INTEGER NOT NULL CHECK (total_votes >= 0),
    payload TEXT NOT NULL,
    decided_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_round_result_session_id ON round_result(session_id);
CREATE INDEX IF NOT EXISTS idx_round_result_decided_at ON round_result(session_id, decided_at);
`
