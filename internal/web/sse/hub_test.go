package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mcoot/stroopgame/internal/model"
	"github.com/mcoot/stroopgame/internal/testutil"
)

type countingRecorder struct {
	connected    chan string
	disconnected chan string
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		connected:    make(chan string, 16),
		disconnected: make(chan string, 16),
	}
}

func (r *countingRecorder) SubscriberConnected(transport string)    { r.connected <- transport }
func (r *countingRecorder) SubscriberDisconnected(transport string) { r.disconnected <- transport }

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-client.Messages():
		if !ok {
			t.Fatal("client channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
	}
	return Message{}
}

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "turn-changed",
			data:      `{"user_id":"u1"}`,
			expected:  "event: turn-changed\ndata: {\"user_id\":\"u1\"}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "scoreboard",
			data:      "{\n  \"rows\": []\n}",
			expected:  "event: scoreboard\ndata: {\ndata:   \"rows\": []\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "single line", input: "hello", expected: []string{"hello"}},
		{name: "two lines", input: "line1\nline2", expected: []string{"line1", "line2"}},
		{name: "trailing newline", input: "line1\n", expected: []string{"line1"}},
		{name: "empty string", input: "", expected: []string{""}},
		{name: "crlf line endings", input: "line1\r\nline2\r\n", expected: []string{"line1", "line2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitLines(%q) returned %d lines, want %d", tt.input, len(result), len(tt.expected))
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q", tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func TestHub_PublishEncodesEvent(t *testing.T) {
	hub := NewHub("12345", testutil.NopLogger(), nil)
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "u1", TransportSSE)
	hub.Register(client)

	hub.Publish(model.TurnChanged{UserID: "u2", Username: "bob"})

	msg := receive(t, client)
	if msg.Event != model.EventTurnChanged {
		t.Errorf("event = %q, want %q", msg.Event, model.EventTurnChanged)
	}
	var payload model.TurnChanged
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.UserID != "u2" || payload.Username != "bob" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestHub_Unregister(t *testing.T) {
	recorder := newCountingRecorder()
	hub := NewHub("12345", testutil.NopLogger(), recorder)
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "u1", TransportWebsocket)
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.Unregister(client)
	waitForClients(t, hub, 0)

	if _, ok := <-client.Messages(); ok {
		t.Error("client channel still open after unregister")
	}
	if got := <-recorder.connected; got != TransportWebsocket {
		t.Errorf("connected transport = %q", got)
	}
	if got := <-recorder.disconnected; got != TransportWebsocket {
		t.Errorf("disconnected transport = %q", got)
	}
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub("12345", testutil.NopLogger(), nil)
	go hub.Run()
	defer hub.Close()

	clients := []*Client{
		NewClient(hub, "u1", TransportSSE),
		NewClient(hub, "u2", TransportSSE),
		NewClient(hub, "u3", TransportWebsocket),
	}
	for _, c := range clients {
		hub.Register(c)
	}
	waitForClients(t, hub, 3)

	hub.Publish(model.RoomReset{RoomCode: "12345"})

	for i, c := range clients {
		if msg := receive(t, c); msg.Event != model.EventRoomReset {
			t.Errorf("client %d received %q", i+1, msg.Event)
		}
	}
}

func TestHub_CloseEndsClients(t *testing.T) {
	hub := NewHub("12345", testutil.NopLogger(), nil)
	go hub.Run()

	client := NewClient(hub, "u1", TransportSSE)
	hub.Register(client)
	hub.Close()
	hub.Close()

	select {
	case _, ok := <-client.Messages():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("client channel not closed")
	}

	if hub.Register(NewClient(hub, "u2", TransportSSE)) {
		t.Error("Register succeeded on closed hub")
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger(), nil)
	defer manager.Close()

	hub1 := manager.GetOrCreateHub("12345")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}
	if hub2 := manager.GetOrCreateHub("12345"); hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same code")
	}
	if hub3 := manager.GetOrCreateHub("67890"); hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different code")
	}
}

func TestHubManager_GetHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger(), nil)
	defer manager.Close()

	if hub := manager.GetHub("99999"); hub != nil {
		t.Error("GetHub returned non-nil for non-existent hub")
	}

	created := manager.GetOrCreateHub("12345")
	if got := manager.GetHub("12345"); got != created {
		t.Error("GetHub returned different hub than GetOrCreateHub")
	}
}

func TestHubManager_PublishWithoutHubDoesNotPanic(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger(), nil)
	manager.Publish("99999", model.RoomReset{RoomCode: "99999"})
}

func TestHubManager_RemoveHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger(), nil)

	manager.GetOrCreateHub("12345")
	manager.RemoveHub("12345")

	if manager.GetHub("12345") != nil {
		t.Error("hub still exists after RemoveHub")
	}

	// Removing a missing hub is a no-op
	manager.RemoveHub("99999")
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger(), nil)
	defer manager.Close()

	manager.GetOrCreateHub("11111")
	active := manager.GetOrCreateHub("22222")
	active.Register(NewClient(active, "u1", TransportSSE))
	waitForClients(t, active, 1)

	if removed := manager.CleanupEmptyHubs(); removed != 1 {
		t.Errorf("CleanupEmptyHubs() = %d, want 1", removed)
	}
	if manager.GetHub("11111") != nil {
		t.Error("empty hub still exists after cleanup")
	}
	if manager.GetHub("22222") == nil {
		t.Error("active hub was removed during cleanup")
	}
}
