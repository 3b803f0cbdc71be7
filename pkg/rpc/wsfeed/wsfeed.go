// Package wsfeed implements the live telemetry push feed described in
// SPEC_FULL.md §6.1: a websocket broadcast hub that mirrors every recorded
// tick to connected visualizer clients, grounded on the teacher's
// handlers.ClientManager register/unregister/broadcast pattern (translated
// from gofiber/websocket to gorilla/websocket, served as a plain net/http
// handler).
package wsfeed

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Frame is one broadcast unit: a vehicle's tick sample, JSON-encoded to
// every subscriber.
type Frame struct {
	VehicleName string  `json:"vehicle_name"`
	TimeStamp   int64   `json:"time_stamp"`
	PosX        float64 `json:"pos_x"`
	PosY        float64 `json:"pos_y"`
	PosZ        float64 `json:"pos_z"`
	QW          float64 `json:"q_w"`
	QX          float64 `json:"q_x"`
	QY          float64 `json:"q_y"`
	QZ          float64 `json:"q_z"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks connected subscribers and fans out Frames to all of them,
// mirroring the teacher's ClientManager but with one client class rather
// than agv/web roles (there is only one kind of subscriber here).
type Hub struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	broadcast  chan Frame
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
}

// NewHub builds a Hub; call Run in its own goroutine to start servicing it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Frame, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run services the Hub's channels until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mu.Unlock()
		case frame := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteJSON(frame); err != nil {
					log.Printf("wsfeed: write to subscriber failed: %v", err)
					go func(c *websocket.Conn) { h.unregister <- c }(conn)
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// Stop ends the Hub's Run loop.
func (h *Hub) Stop() { close(h.done) }

// Publish enqueues frame for delivery to every current subscriber. It never
// blocks the physics tick that calls it: a full broadcast channel drops the
// frame rather than backing up the caller.
func (h *Hub) Publish(frame Frame) {
	select {
	case h.broadcast <- frame:
	default:
		log.Printf("wsfeed: broadcast buffer full, dropping frame for %s", frame.VehicleName)
	}
}

// ServeHTTP upgrades the connection and registers it as a subscriber. It
// reads and discards incoming messages only to detect disconnects; this
// feed is one-directional (server → client).
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("wsfeed: upgrade failed: %v", err)
		return
	}
	h.register <- conn
	defer func() { h.unregister <- conn }()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
