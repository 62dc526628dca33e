package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stochsim/polysim/internal/polysim"
)

func TestWebSocketNotifierBasics(t *testing.T) {
	notifier := NewWebSocketNotifier("test-ws")
	defer notifier.Close()

	if notifier.ID() != "test-ws" {
		t.Errorf("Expected ID 'test-ws', got '%s'", notifier.ID())
	}
	if notifier.Type() != "websocket" {
		t.Errorf("Expected type 'websocket', got '%s'", notifier.Type())
	}

	upgrader := notifier.GetUpgrader()
	if upgrader.ReadBufferSize == 0 || upgrader.WriteBufferSize == 0 {
		t.Error("Expected non-zero upgrader buffer sizes")
	}
}

func TestWebSocketNotifierNotifyWithoutClients(t *testing.T) {
	notifier := NewWebSocketNotifier("test-ws")
	defer notifier.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := notifier.Notify(ctx, testEvent()); err != nil {
		t.Errorf("Expected no error with no clients, got %v", err)
	}
}

func TestWebSocketNotifierBroadcast(t *testing.T) {
	notifier := NewWebSocketNotifier("test-ws")
	defer notifier.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := notifier.GetUpgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		notifier.RegisterClient(conn)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	// The registration passes through the broadcaster goroutine; give it
	// a moment before notifying.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := notifier.Notify(ctx, testEvent()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var event polysim.RunEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Decoding broadcast failed: %v", err)
	}
	if event.RunID != "run-1" || event.Kind != polysim.EventTermination {
		t.Errorf("Unexpected broadcast event: %+v", event)
	}
}

func TestWebSocketNotifierClose(t *testing.T) {
	notifier := NewWebSocketNotifier("test-ws")
	if err := notifier.Close(); err != nil {
		t.Errorf("Expected no error on close, got %v", err)
	}
}
