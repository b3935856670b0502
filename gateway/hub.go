// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/danielhkuo/quickly-pick-live/models"
)

// Hub is the directory of live connections, keyed by connection id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// unregister removes c and closes its send queue, which stops its write
// pump. Publish holds the read lock while sending, so it never sends on
// a closed queue.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[c.ID]; ok && cur == c {
		delete(h.clients, c.ID)
		close(c.send)
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish encodes one frame and queues it for every listed connection.
// It never blocks: a connection whose queue is full misses the frame, and
// unknown ids are skipped.
func (h *Hub) Publish(connIDs []string, event string, data any) {
	if len(connIDs) == 0 {
		return
	}

	frame, err := encode(event, data)
	if err != nil {
		slog.Error("failed to encode frame", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range connIDs {
		c, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case c.send <- frame:
		default:
			slog.Warn("send queue full, dropping frame", "conn_id", id, "event", event)
		}
	}
}

func encode(event string, data any) ([]byte, error) {
	env := models.Envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}
