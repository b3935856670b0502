// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// How long a single write to the socket may take
	writeTimeout = 10 * time.Second

	// How long we wait for a pong after sending a ping
	pongTimeout = 60 * time.Second

	// Must be less than pongTimeout
	pingInterval = (pongTimeout * 9) / 10

	// Outgoing frames buffered per connection before we start dropping
	sendBufferLength = 64

	// Largest inbound frame we accept
	maxFrameSize = 16 * 1024
)

// Client is one live WebSocket connection.
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

func newClient(id string, conn *websocket.Conn, remote string) *Client {
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, sendBufferLength),
		remote: remote,
	}
}

// readPump hands each inbound frame to dispatch, one at a time, until the
// connection fails or closes.
func (c *Client) readPump(dispatch func(connID string, frame []byte)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		msgType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "conn_id", c.ID, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		dispatch(c.ID, frame)
	}
}

// writePump drains the send queue to the socket and keeps the connection
// alive with pings. It exits when the queue is closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.Debug("websocket write failed", "conn_id", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
