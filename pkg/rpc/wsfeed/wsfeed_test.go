package wsfeed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcastsFramesToSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := httptest.NewServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	defer conn.Close()

	// Give the Hub a moment to process the registration before publishing.
	time.Sleep(50 * time.Millisecond)
	hub.Publish(Frame{VehicleName: "v1", TimeStamp: 42})

	var got Frame
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("unexpected error reading broadcast frame: %v", err)
	}
	if got.VehicleName != "v1" || got.TimeStamp != 42 {
		t.Fatalf("expected the published frame to arrive intact, got %+v", got)
	}
}

func TestHubPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub() // Run is deliberately not started, so the channel never drains.
	for i := 0; i < 256; i++ {
		hub.Publish(Frame{VehicleName: "v1"})
	}
	// The 257th publish must not block even though the buffered channel (256) is full.
	done := make(chan struct{})
	go func() {
		hub.Publish(Frame{VehicleName: "overflow"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Publish to drop rather than block when the buffer is full")
	}
}

func TestHubUnregisterOnDisconnect(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := httptest.NewServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	conn.Close()
	time.Sleep(50 * time.Millisecond)

	hub.mu.RLock()
	n := len(hub.clients)
	hub.mu.RUnlock()
	if n != 0 {
		t.Fatalf("expected the disconnected client to be unregistered, got %d clients", n)
	}
}
