// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickly-pick-live/cliparse"
	"github.com/danielhkuo/quickly-pick-live/db"
	"github.com/danielhkuo/quickly-pick-live/models"
	"github.com/danielhkuo/quickly-pick-live/store"
)

// SetupTestArchive opens a fresh in-memory archive, closed when the test ends
func SetupTestArchive(t *testing.T) *store.Archive {
	t.Helper()

	conn, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test archive: %v", err)
	}

	a := store.NewArchive(conn)
	t.Cleanup(func() { a.Close() })
	return a
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             5000,
		AllowedOrigin:    "*",
		DefaultTimeLimit: 60,
		MaxTimeLimit:     3600,
		Retention:        time.Minute,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Frame is one event delivered to one connection.
type Frame struct {
	ConnID string
	Event  string
	Data   any
}

// Recorder is a publisher that remembers every frame it was asked to send.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(connIDs []string, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range connIDs {
		r.frames = append(r.frames, Frame{ConnID: id, Event: event, Data: data})
	}
}

// Frames returns everything sent to connID, in order.
func (r *Recorder) Frames(connID string) []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Frame
	for _, f := range r.frames {
		if f.ConnID == connID {
			out = append(out, f)
		}
	}
	return out
}

// Events returns the frames of one event type sent to connID.
func (r *Recorder) Events(connID, event string) []Frame {
	var out []Frame
	for _, f := range r.Frames(connID) {
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}

// Count returns how many frames of event went to connID.
func (r *Recorder) Count(connID, event string) int {
	return len(r.Events(connID, event))
}

// Last returns the latest frame of event sent to connID.
func (r *Recorder) Last(connID, event string) (Frame, bool) {
	events := r.Events(connID, event)
	if len(events) == 0 {
		return Frame{}, false
	}
	return events[len(events)-1], true
}

// Reset forgets all recorded frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

// LastResults returns the results carried by the latest event frame to connID.
func (r *Recorder) LastResults(t *testing.T, connID, event string) models.Results {
	t.Helper()

	f, ok := r.Last(connID, event)
	if !ok {
		t.Fatalf("no %s frame sent to %s", event, connID)
	}
	switch data := f.Data.(type) {
	case models.ResultsResponse:
		return data.Results
	case models.PollSnapshotResponse:
		return data.Poll
	default:
		t.Fatalf("%s frame carries %T, not results", event, f.Data)
		return models.Results{}
	}
}

// DialWS opens a WebSocket connection to the path on an httptest server
func DialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// SendEvent writes one event envelope
func SendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to encode %s payload: %v", event, err)
	}
	if err := conn.WriteJSON(models.Envelope{Event: event, Data: raw}); err != nil {
		t.Fatalf("Failed to send %s: %v", event, err)
	}
}

// ReadUntil reads frames until one with the given event arrives, failing
// the test after timeout
func ReadUntil(t *testing.T, conn *websocket.Conn, event string, timeout time.Duration) models.Envelope {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		conn.SetReadDeadline(deadline)
		var env models.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("Failed waiting for %s: %v", event, err)
		}
		if env.Event == event {
			return env
		}
	}
}

// DecodeData decodes an envelope's payload into v
func DecodeData(t *testing.T, env models.Envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("Failed to decode %s payload: %v", env.Event, err)
	}
}

// Eventually polls cond until it holds or timeout passes
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %v: %s", timeout, msg)
	}
}
