// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickly-pick-live/coordinator"
	"github.com/danielhkuo/quickly-pick-live/ident"
	"github.com/danielhkuo/quickly-pick-live/middleware"
	"github.com/danielhkuo/quickly-pick-live/models"
)

// Coordinator is the set of poll operations the gateway dispatches to.
type Coordinator interface {
	CreatePoll(req models.CreatePollRequest, presenter string) (models.PollView, error)
	StartPoll(pollID, caller string) error
	JoinPoll(pollID, name, connID string) (models.Results, error)
	SubmitAnswer(pollID, connID, answer string) error
	EndPoll(pollID, caller string) error
	RemoveStudent(pollID, target, caller string) error
	GetResults(pollID string) (models.Results, error)
	RelayChat(connID string, req models.ChatRequest) (models.ChatMessage, error)
	HandleDisconnect(connID string)
}

type Gateway struct {
	hub      *Hub
	coord    Coordinator
	upgrader websocket.Upgrader
}

// New returns a gateway that accepts upgrades from allowedOrigin ("*" for
// any origin). Requests without an Origin header are always accepted.
func New(hub *Hub, coord Coordinator, allowedOrigin string) *Gateway {
	return &Gateway{
		hub:   hub,
		coord: coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// ServeHTTP handles GET /ws
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	connID, err := ident.NewConnID()
	if err != nil {
		slog.Error("failed to generate connection id", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to open connection")
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		slog.Warn("websocket upgrade failed", "remote", middleware.GetClientIP(r), "error", err)
		return
	}

	c := newClient(connID, conn, middleware.GetClientIP(r))
	g.hub.register(c)
	slog.Info("client connected", "conn_id", connID, "remote", c.remote)

	g.reply(connID, models.EventConnected, models.ConnectedResponse{SocketID: connID})

	go c.writePump()
	go func() {
		c.readPump(g.Dispatch)

		g.hub.unregister(c)
		g.coord.HandleDisconnect(connID)
		slog.Info("client disconnected", "conn_id", connID)
	}()
}

// Dispatch decodes one inbound frame and performs the matching poll
// operation on behalf of connID. Bad frames never close the connection.
func (g *Gateway) Dispatch(connID string, frame []byte) {
	var env models.Envelope
	if err := json.Unmarshal(frame, &env); err != nil || env.Event == "" {
		g.replyError(connID, "bad_frame", "frames must be {\"event\", \"data\"} objects")
		return
	}
	if len(env.Data) == 0 {
		env.Data = json.RawMessage("null")
	}

	switch env.Event {
	case models.EventCreatePoll:
		var req models.CreatePollRequest
		if !g.decode(connID, env, &req) {
			return
		}
		view, err := g.coord.CreatePoll(req, connID)
		if err != nil {
			g.fail(connID, env.Event, err)
			return
		}
		g.reply(connID, models.EventPollCreated, models.PollCreatedResponse{PollID: view.ID, Poll: view})

	case models.EventStartPoll:
		var ref models.PollRef
		if !g.decode(connID, env, &ref) {
			return
		}
		g.fail(connID, env.Event, g.coord.StartPoll(ref.PollID, connID))

	case models.EventJoinPoll:
		var req models.JoinPollRequest
		if !g.decode(connID, env, &req) {
			return
		}
		res, err := g.coord.JoinPoll(req.PollID, req.StudentName, connID)
		if errors.Is(err, coordinator.ErrNotFound) {
			g.reply(connID, models.EventPollNotFound, models.PollNotFoundResponse{PollID: req.PollID})
			return
		}
		if err != nil {
			g.fail(connID, env.Event, err)
			return
		}
		g.reply(connID, models.EventPollJoined, models.PollSnapshotResponse{PollID: req.PollID, Poll: res})

	case models.EventSubmitAnswer:
		var req models.SubmitAnswerRequest
		if !g.decode(connID, env, &req) {
			return
		}
		g.fail(connID, env.Event, g.coord.SubmitAnswer(req.PollID, connID, req.Answer))

	case models.EventEndPoll:
		var ref models.PollRef
		if !g.decode(connID, env, &ref) {
			return
		}
		g.fail(connID, env.Event, g.coord.EndPoll(ref.PollID, connID))

	case models.EventRemoveStudent:
		var req models.RemoveStudentRequest
		if !g.decode(connID, env, &req) {
			return
		}
		g.fail(connID, env.Event, g.coord.RemoveStudent(req.PollID, req.StudentSocketID, connID))

	case models.EventGetResults:
		var ref models.PollRef
		if !g.decode(connID, env, &ref) {
			return
		}
		res, err := g.coord.GetResults(ref.PollID)
		if err != nil {
			g.fail(connID, env.Event, err)
			return
		}
		g.reply(connID, models.EventPollResults, models.ResultsResponse{PollID: ref.PollID, Results: res})

	case models.EventChatMessage:
		var req models.ChatRequest
		if !g.decode(connID, env, &req) {
			return
		}
		_, err := g.coord.RelayChat(connID, req)
		g.fail(connID, env.Event, err)

	default:
		g.replyError(connID, "unknown_event", "unknown event "+env.Event)
	}
}

func (g *Gateway) decode(connID string, env models.Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		g.replyError(connID, "bad_payload", env.Event+": "+err.Error())
		return false
	}
	return true
}

// fail reports err back to the caller when the caller can fix it.
// Requests that are merely out of date or not the caller's to make are
// dropped. A nil err does nothing.
func (g *Gateway) fail(connID, event string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, coordinator.ErrInvalidInput):
		g.replyError(connID, "invalid_input", err.Error())
	case errors.Is(err, coordinator.ErrNotFound),
		errors.Is(err, coordinator.ErrUnauthorized),
		errors.Is(err, coordinator.ErrStale):
		slog.Debug("event ignored", "conn_id", connID, "event", event, "reason", err)
	default:
		slog.Error("event failed", "conn_id", connID, "event", event, "error", err)
		g.replyError(connID, "internal", "Something went wrong")
	}
}

func (g *Gateway) reply(connID, event string, data any) {
	g.hub.Publish([]string{connID}, event, data)
}

func (g *Gateway) replyError(connID, code, message string) {
	g.reply(connID, models.EventError, models.ErrorResponse{Error: code, Message: message})
}
