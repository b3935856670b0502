// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-pick-live/coordinator"
	"github.com/danielhkuo/quickly-pick-live/middleware"
	"github.com/danielhkuo/quickly-pick-live/models"
	"github.com/danielhkuo/quickly-pick-live/store"
)

// PollReader is the read side of the coordinator.
type PollReader interface {
	GetResults(pollID string) (models.Results, error)
	History(limit int) ([]models.ArchivedResult, error)
}

type ResultsHandler struct {
	polls PollReader
}

func NewResultsHandler(polls PollReader) *ResultsHandler {
	return &ResultsHandler{polls: polls}
}

// GetHistory handles GET /api/poll-history?limit=N
// Returns the most recently ended polls, newest first
func (h *ResultsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := store.MaxHistory
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, err := h.polls.History(limit)
	if err != nil {
		slog.Error("failed to read poll history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Archive error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, history)
}

// GetResults handles GET /api/polls/{id}/results
// Returns the live snapshot of a poll that is running or recently ended
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	results, err := h.polls.GetResults(pollID)
	if errors.Is(err, coordinator.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to read poll results", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{PollID: pollID, Results: results})
}
