// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gateway carries poll events over WebSockets.

# Connections

Gateway is an http.Handler mounted at /ws. Each upgraded connection gets
an id, is registered with the Hub, and is told its id:

	{"event": "connected", "data": {"socketId": "..."}}

A read pump hands frames to Dispatch one at a time, so events from one
connection are processed in order. A write pump drains the connection's
send queue and pings every 54s. When the socket closes the connection is
unregistered and the coordinator's HandleDisconnect runs.

# Frames

Every frame in either direction is an envelope:

	{"event": "submit-answer", "data": {"pollId": "...", "answer": "Red"}}

Events that only need a poll id (start-poll, end-poll, get-results) accept
either a bare string or {"pollId": "..."} as data.

# Errors

Malformed frames and invalid input produce an "error" event to the sender.
Joining an unknown poll produces "poll-not-found". Requests from the wrong
connection or for a poll in the wrong state are dropped and logged at
debug level.

# Fan-out

Hub.Publish never blocks. A connection that falls 64 frames behind misses
frames until it catches up.
*/
package gateway
