package sse

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/stroopgame/internal/metrics"
	"github.com/mcoot/stroopgame/internal/model"
)

// Message is one named event ready for delivery
type Message struct {
	Event model.EventType
	Data  json.RawMessage
}

// NewMessage serializes an event payload
func NewMessage(event model.Event) (Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Message{}, err
	}
	return Message{Event: event.Type(), Data: data}, nil
}

// Hub fans room events out to every connected subscriber, whether it streams
// over SSE or a websocket
type Hub struct {
	roomCode model.RoomCode
	clients  map[*Client]bool
	mu       sync.RWMutex
	logger   *slog.Logger
	recorder metrics.SubscriberRecorder

	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a room
func NewHub(roomCode model.RoomCode, logger *slog.Logger, recorder metrics.SubscriberRecorder) *Hub {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Hub{
		roomCode:   roomCode,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("room_code", string(roomCode))),
		recorder:   recorder,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("event hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.recorder.SubscriberConnected(client.transport)
			h.logger.Info("event client registered",
				slog.String("user_id", string(client.userID)),
				slog.String("transport", client.transport),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.recorder.SubscriberDisconnected(client.transport)
				h.logger.Info("event client unregistered",
					slog.String("user_id", string(client.userID)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("event dropped for slow clients",
					slog.String("event", string(message.Event)),
					slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
				h.recorder.SubscriberDisconnected(client.transport)
			}
			h.mu.Unlock()
			h.logger.Debug("event hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub. Returns false if the hub is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every client
func (h *Hub) Broadcast(message Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Warn("event broadcast dropped, hub buffer full",
			slog.String("event", string(message.Event)))
	}
}

// Publish serializes and broadcasts an event
func (h *Hub) Publish(event model.Event) {
	message, err := NewMessage(event)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("event", string(event.Type())),
			slog.String("error", err.Error()))
		return
	}
	h.Broadcast(message)
}

// Close shuts down the hub. Safe to call more than once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage renders a message in the text/event-stream format.
// Every data line gets its own "data: " prefix.
func formatSSEMessage(eventName string, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteByte('\n')
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r and a trailing empty line
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager owns one hub per room
type HubManager struct {
	hubs     map[model.RoomCode]*Hub
	mu       sync.RWMutex
	logger   *slog.Logger
	recorder metrics.SubscriberRecorder
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger, recorder metrics.SubscriberRecorder) *HubManager {
	return &HubManager{
		hubs:     make(map[model.RoomCode]*Hub),
		logger:   logger.With(slog.String("component", "events")),
		recorder: recorder,
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(roomCode model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomCode]; ok {
		return hub
	}

	hub := NewHub(roomCode, m.logger, m.recorder)
	m.hubs[roomCode] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomCode model.RoomCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomCode]
}

// Publish sends an event to the room's subscribers, if it has any hub
func (m *HubManager) Publish(roomCode model.RoomCode, event model.Event) {
	if hub := m.GetHub(roomCode); hub != nil {
		hub.Publish(event)
	}
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(roomCode model.RoomCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomCode]; ok {
		hub.Close()
		delete(m.hubs, roomCode)
		m.logger.Info("event hub removed", slog.String("room_code", string(roomCode)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for code, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, code)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("empty event hubs cleaned up", slog.Int("removed", removed))
	}
	return removed
}

// Close shuts every hub down, ending all streams
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, code)
	}
}
