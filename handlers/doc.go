// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP read endpoints of Quickly Pick Live.

Live poll traffic goes over WebSockets (package gateway). The handlers here
expose the archive and poll snapshots to plain HTTP clients:

	GET /api/poll-history?limit=N → GetHistory
	GET /api/polls/{id}/results   → GetResults

ResultsHandler depends on a PollReader, which *coordinator.Coordinator
satisfies:

	resultsHandler := handlers.NewResultsHandler(coord)

History holds at most ten records per request, newest first. A poll's
results stay readable for the configured retention after it ends.
*/
package handlers
