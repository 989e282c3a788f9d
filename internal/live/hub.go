// Package live serves planning sessions over WebSocket.
package live

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Hub tracks which connections follow which planning session, so every tab
// watching a session sees its outcomes.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[*websocket.Conn]struct{})}
}

// Watch adds conn to the watchers of sessionID.
func (h *Hub) Watch(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.watchers[sessionID]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		h.watchers[sessionID] = conns
	}
	conns[conn] = struct{}{}
	slog.Debug("Session watcher registered", "session_id", sessionID, "watchers", len(conns))
}

// Unwatch removes conn from sessionID.
func (h *Hub) Unwatch(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.watchers[sessionID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.watchers, sessionID)
		}
	}
}

// Watchers returns how many connections follow sessionID.
func (h *Hub) Watchers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[sessionID])
}

// Broadcast sends data to every watcher of sessionID except skip.
func (h *Hub) Broadcast(ctx context.Context, sessionID string, data []byte, skip *websocket.Conn) {
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.watchers[sessionID]))
	for c := range h.watchers[sessionID] {
		if c != skip {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Write(ctx, websocket.MessageText, data); err != nil {
			slog.Debug("Broadcast write failed", "session_id", sessionID, "error", err)
		}
	}
}

// CloseAll closes every watched connection.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sid, conns := range h.watchers {
		for c := range conns {
			_ = c.Close(websocket.StatusGoingAway, "server shutting down")
		}
		delete(h.watchers, sid)
	}
}
