// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ident generates the identifiers used across the server.

# Poll IDs

Polls are identified by random (version 4) UUIDs:

	pollID := ident.NewPollID()

UUIDs never repeat within a process, so an id that has been evicted from
the poll table is never handed out again.

# Connection IDs

Every WebSocket connection gets a 20 character hex id:

	connID, err := ident.NewConnID()

Clients learn their own id from the "connected" event and presenters use
student ids to remove them from a poll.

# Other IDs

	msgID := ident.NewMessageID()  // chat messages
	id, err := ident.GenerateID(8) // 16 hex characters, any length
*/
package ident
