// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the archive database and creates its schema.

The archive lives in an in-memory SQLite database (modernc.org/sqlite, no
cgo) and disappears with the process:

	conn, err := db.OpenMemory()

The pool is pinned to one connection because each new connection to
":memory:" would see a fresh, empty database.

# Tables

	archived_poll: one row per concluded poll

poll_id is UNIQUE, so a poll can never be archived twice even if two
termination paths both reached the insert. options and results are JSON
text; ended_at is Unix nanoseconds.
*/
package db
