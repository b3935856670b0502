// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-pick-live/handlers"
	"github.com/danielhkuo/quickly-pick-live/middleware"
)

func NewRouter(polls handlers.PollReader, ws http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	resultsHandler := handlers.NewResultsHandler(polls)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Live polls over WebSocket
	mux.Handle("GET /ws", ws)

	// Archive and snapshots
	mux.HandleFunc("GET /api/poll-history", middleware.WithLogging(resultsHandler.GetHistory))
	mux.HandleFunc("GET /api/polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-pick live v1"))
	})

	return mux
}
