package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/warrantscan/internal/pipeline"
	"github.com/wonny/warrantscan/pkg/logger"
)

const (
	writeWait   = 5 * time.Second
	eventBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 로컬 대시보드용
	},
}

// Message is the frame sent to websocket clients
type Message struct {
	Type    string         `json:"type"`
	Payload pipeline.Event `json:"payload"`
}

// Hub fans pipeline events out to websocket clients
// ⭐ SSOT: 스캔 진행 이벤트 스트림은 여기서만
type Hub struct {
	logger  *logger.Logger
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
	events  chan pipeline.Event
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:  log,
		clients: make(map[*websocket.Conn]*sync.Mutex),
		events:  make(chan pipeline.Event, eventBuffer),
	}
}

// Run broadcasts queued events until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			h.broadcast(ev)
		}
	}
}

// ServeWS upgrades the connection and keeps it until the client leaves
// GET /ws/scan
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Debug("WebSocket client connected")

	// Clients only listen; reading detects disconnects.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish queues an event for broadcast. Matches pipeline.EventSink.
// Events are dropped while the queue is full so a scan never waits on clients.
func (h *Hub) Publish(ev pipeline.Event) {
	select {
	case h.events <- ev:
	default:
		h.logger.WithField("type", string(ev.Type)).Debug("Event queue full, event dropped")
	}
}

func (h *Hub) broadcast(ev pipeline.Event) {
	msg := Message{Type: string(ev.Type), Payload: ev}

	h.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, lock := range h.clients {
		targets[conn] = lock
	}
	h.mu.RUnlock()

	for conn, lock := range targets {
		lock.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteJSON(msg)
		lock.Unlock()

		if err != nil {
			h.logger.WithError(err).Debug("WebSocket write failed, dropping client")
			h.remove(conn)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if ok {
		conn.Close()
	}
}
