package backend

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/push"
)

// writeTimeout bounds how long one stalled client can hold up a broadcast.
const writeTimeout = 5 * time.Second

// Hub fans push frames out to every connected websocket client. Delivery is
// fire-and-forget: a slow or dead connection is dropped, never waited on.
type Hub struct {
	mu       sync.Mutex
	logger   *zap.Logger
	upgrader websocket.Upgrader
	conns    map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades a connection and parks it until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("push upgrade failed", zap.Error(err))
		return
	}
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("push client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Clients never send frames; the read loop only detects disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(conn)
}

// Broadcast sends one event frame to every connected client.
func (h *Hub) Broadcast(eventType push.EventType, payload any) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("unencodable push payload", zap.Error(err))
		return
	}
	frame, err := json.Marshal(push.Frame{Type: eventType, Payload: encoded})
	if err != nil {
		h.logger.Error("unencodable push frame", zap.Error(err))
		return
	}

	// Writes stay under the lock: gorilla allows one concurrent writer per
	// connection, and handlers broadcast from separate request goroutines.
	// The deadline keeps a stalled peer from blocking the hub; it times out,
	// errors, and gets dropped like any dead connection.
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}
