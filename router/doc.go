// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Pick Live server.

# Route Registration

	mux := router.NewRouter(coord, gw)

# Endpoints

	GET /health                  - Liveness check
	GET /ws                      - WebSocket upgrade, see package gateway
	GET /api/poll-history        - Archived polls, newest first (?limit=1..10)
	GET /api/polls/{id}/results  - Snapshot of a live or recently ended poll
*/
package router
