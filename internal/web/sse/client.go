package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/stroopgame/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256

	TransportSSE       = "sse"
	TransportWebsocket = "websocket"
)

// Client is one subscriber of a room hub
type Client struct {
	hub         *Hub
	userID      model.UserID
	transport   string
	send        chan Message
	connectedAt time.Time
}

// NewClient creates a new client for the given transport
func NewClient(hub *Hub, userID model.UserID, transport string) *Client {
	return &Client{
		hub:         hub,
		userID:      userID,
		transport:   transport,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Messages is closed when the hub drops the client
func (c *Client) Messages() <-chan Message {
	return c.send
}

// UserID returns the subscribing user
func (c *Client) UserID() model.UserID {
	return c.userID
}

// ServeSSE streams hub messages to the client until it disconnects or the hub
// closes. onConnect runs once the client is registered.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, userID model.UserID, onConnect func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := NewClient(hub, userID, TransportSSE)
	if !hub.Register(client) {
		http.Error(w, "Room stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	_, _ = w.Write(formatSSEMessage("connected", `{"status":"connected"}`))
	flusher.Flush()
	if onConnect != nil {
		onConnect()
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(formatSSEMessage(string(message.Event), string(message.Data))); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
