// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database. It lives exactly as long
// as its single connection, which is as long as the *sql.DB.
const MemoryDSN = ":memory:"

// OpenMemory opens an in-memory SQLite database with the schema applied.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// Every new connection to :memory: is a new, empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping archive database: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
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
-- Concluded polls
CREATE TABLE IF NOT EXISTS archived_poll (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    poll_id TEXT NOT NULL UNIQUE,
    question TEXT NOT NULL,
    options TEXT NOT NULL,
    results TEXT NOT NULL,
    total_responses INTEGER NOT NULL CHECK (total_responses >= 0),
    time_limit INTEGER NOT NULL CHECK (time_limit > 0),
    reason TEXT NOT NULL CHECK (reason IN ('manual', 'expired')),
    ended_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_archived_poll_ended_at ON archived_poll(ended_at);
`
