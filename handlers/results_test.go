// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-pick-live/coordinator"
	"github.com/danielhkuo/quickly-pick-live/models"
	"github.com/danielhkuo/quickly-pick-live/registry"
	"github.com/danielhkuo/quickly-pick-live/store"
	"github.com/danielhkuo/quickly-pick-live/testutil"
)

func setupCoordinator(t *testing.T) *coordinator.Coordinator {
	t.Helper()

	cfg := testutil.GetTestConfig()
	c := coordinator.New(
		store.New(testutil.SetupTestArchive(t)),
		registry.New(),
		testutil.NewRecorder(),
		coordinator.Options{
			DefaultTimeLimit: cfg.DefaultTimeLimit,
			MaxTimeLimit:     cfg.MaxTimeLimit,
			Retention:        cfg.Retention,
		},
	)
	t.Cleanup(c.Close)
	return c
}

// runPoll creates, starts and ends a poll with one vote for "Yes".
func runPoll(t *testing.T, c *coordinator.Coordinator, question string) string {
	t.Helper()

	view, err := c.CreatePoll(models.CreatePollRequest{Question: question, Options: []string{"Yes", "No"}}, "teacher")
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}
	if err := c.StartPoll(view.ID, "teacher"); err != nil {
		t.Fatalf("Failed to start poll: %v", err)
	}
	if _, err := c.JoinPoll(view.ID, "Sam", "student"); err != nil {
		t.Fatalf("Failed to join poll: %v", err)
	}
	if err := c.SubmitAnswer(view.ID, "student", "Yes"); err != nil {
		t.Fatalf("Failed to submit answer: %v", err)
	}
	if err := c.EndPoll(view.ID, "teacher"); err != nil {
		t.Fatalf("Failed to end poll: %v", err)
	}
	return view.ID
}

func TestGetHistory(t *testing.T) {
	c := setupCoordinator(t)
	handler := NewResultsHandler(c)

	for i := 0; i < 12; i++ {
		runPoll(t, c, fmt.Sprintf("Question %d", i))
		// ended_at ordering needs distinct timestamps
		time.Sleep(time.Millisecond)
	}

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{"default limit", "", http.StatusOK, 10},
		{"smaller limit", "?limit=3", http.StatusOK, 3},
		{"limit above max is clamped", "?limit=50", http.StatusOK, 10},
		{"zero limit", "?limit=0", http.StatusBadRequest, 0},
		{"not a number", "?limit=ten", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/poll-history"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.GetHistory(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var history []models.ArchivedResult
			if err := json.NewDecoder(w.Body).Decode(&history); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if len(history) != tt.expectedCount {
				t.Fatalf("Expected %d records, got %d", tt.expectedCount, len(history))
			}
			if history[0].Question != "Question 11" {
				t.Errorf("Expected newest poll first, got '%s'", history[0].Question)
			}
			if history[0].Results["Yes"] != 1 || history[0].TotalResponses != 1 {
				t.Errorf("Unexpected record: %+v", history[0])
			}
		})
	}
}

func TestGetHistory_Empty(t *testing.T) {
	handler := NewResultsHandler(setupCoordinator(t))

	req := httptest.NewRequest("GET", "/api/poll-history", nil)
	w := httptest.NewRecorder()

	handler.GetHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty JSON array, got '%s'", body)
	}
}

func TestGetResults(t *testing.T) {
	c := setupCoordinator(t)
	handler := NewResultsHandler(c)
	pollID := runPoll(t, c, "Ready?")

	tests := []struct {
		name           string
		pollID         string
		expectedStatus int
	}{
		{"ended poll within retention", pollID, http.StatusOK},
		{"unknown poll", "nonexistent", http.StatusNotFound},
		{"missing id", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/polls/"+tt.pollID+"/results", nil)
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.GetResults(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.ResultsResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.PollID != pollID || resp.Results.IsActive || resp.Results.Tally["Yes"] != 1 {
				t.Errorf("Unexpected response: %+v", resp)
			}
		})
	}
}
