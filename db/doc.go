// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db stores the outcome journal.

# Connecting

Open selects the driver from the database type:

	conn, err := db.Open(ctx, "sqlite", "file:roundvote.db")
	conn, err := db.Open(ctx, "postgres", "postgres://...")

SQLite uses modernc.org/sqlite; PostgreSQL uses lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - round_result: One row per decided round, with the full outcome as JSON

Destroyed and reset rounds are never recorded. The journal is history for
operators only; sessions always start empty after a process restart.
*/
package db
