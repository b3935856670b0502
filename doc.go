// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Pick Live server.

Quickly Pick Live runs classroom polls in real time: a teacher creates a
multiple-choice question, students join over WebSockets and answer, and
everyone watches the tally change until the teacher ends the poll or its
time runs out. Ended polls are archived for the life of the process.

# Starting the Server

	go run .

Or with flags:

	go run . -p 5000 -origin http://localhost:3000 -time-limit 90

Settings are also read from the environment and from a .env file in the
working directory.

# Configuration

  - PORT (-p): Server port (default: 5000)
  - CORS_ORIGIN (-origin): Allowed browser origin, "*" for any (default: http://localhost:3000)
  - DEFAULT_TIME_LIMIT (-time-limit): Seconds, for polls created without one (default: 60)
  - MAX_TIME_LIMIT (-max-time-limit): Largest accepted time limit (default: 3600)
  - POLL_RETENTION (-retain): How long ended polls stay joinable (default: 10m)
  - LOG_LEVEL (-log-level): debug, info, warn or error (default: info)
  - LOG_FORMAT (-log-format): text or json (default: text)

# Architecture

  - gateway: WebSocket connections, event decoding, fan-out
  - coordinator: poll lifecycle, deadlines, snapshots, chat routing
  - poll: the poll entity and its tally
  - registry: which poll each connection has joined
  - store: the live poll table and the archive
  - db: in-memory SQLite schema
  - handlers, router, middleware: HTTP surface
  - cliparse: configuration parsing
  - ident: identifier generation

See package documentation for each component.
*/
package main
