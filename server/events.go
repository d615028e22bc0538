package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"CrateFM/core/catalog"
	"CrateFM/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The UI is served from another origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventHub pushes sync lifecycle events to connected UI clients. It
// implements catalog.Notifier; Notify never blocks — slow clients are
// dropped.
type EventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*websocket.Conn]chan []byte)}
}

// Notify broadcasts one event to every connected client.
func (h *EventHub) Notify(event catalog.SyncEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		logger.Warn("Event marshal failed", logger.ErrorField(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- raw:
		default:
			// Client not keeping up; disconnect it rather than block a sync.
			close(send)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// HandleWS upgrades one client connection and streams events until the
// client goes away.
func (h *EventHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", logger.ErrorField(err))
		return
	}

	send := make(chan []byte, 16)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	go h.writeLoop(conn, send)
	go h.readLoop(conn)
}

func (h *EventHub) writeLoop(conn *websocket.Conn, send chan []byte) {
	for raw := range send {
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			h.drop(conn)
			return
		}
	}
}

// readLoop discards client messages and notices disconnects.
func (h *EventHub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *EventHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		close(send)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	conn.Close()
}
