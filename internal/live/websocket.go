package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/identity"
	"github.com/ashureev/outing-planner/internal/workflow"
)

// Planner is the workflow surface the socket drives.
type Planner interface {
	Start(ctx context.Context, request, sessionID string, opts workflow.Options) (*workflow.Outcome, error)
	Resume(ctx context.Context, sessionID, feedback string) (*workflow.Outcome, error)
}

// Message is a client frame.
type Message struct {
	Type         string               `json:"type"`
	SessionID    string               `json:"session_id,omitempty"`
	Location     string               `json:"location,omitempty"`
	Feedback     string               `json:"feedback,omitempty"`
	TimeSettings *domain.TimeSettings `json:"time_settings,omitempty"`
	DateTheme    *domain.DateTheme    `json:"date_theme,omitempty"`
}

// Reply is a server frame.
type Reply struct {
	Type    string            `json:"type"`
	Outcome *workflow.Outcome `json:"outcome,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Handler handles WebSocket planning sessions.
type Handler struct {
	planner       Planner
	hub           *Hub
	allowedOrigin string
	isDev         bool
	runTimeout    time.Duration
}

// NewHandler creates a WebSocket handler.
func NewHandler(planner Planner, hub *Hub, allowedOrigin string, isDev bool) *Handler {
	if hub == nil {
		hub = NewHub()
	}
	return &Handler{
		planner:       planner,
		hub:           hub,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
		runTimeout:    2 * time.Minute,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientID := identity.ClientIDFromContext(r.Context())
	slog.Info("WebSocket connection request", "client_id", clientID, "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "client_id", clientID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "client_id", clientID)
		}
	}()

	c := &conn{
		h:       h,
		ws:      ws,
		watched: make(map[string]struct{}),
	}
	if sid := identity.SessionIDFromContext(r.Context()); sid != "" {
		c.watch(sid)
	}
	defer c.unwatchAll()

	c.readLoop(r.Context())
	slog.Info("Planning socket closed", "client_id", clientID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

type conn struct {
	h       *Handler
	ws      *websocket.Conn
	watched map[string]struct{}
}

func (c *conn) watch(sessionID string) {
	if _, ok := c.watched[sessionID]; ok {
		return
	}
	c.watched[sessionID] = struct{}{}
	c.h.hub.Watch(sessionID, c.ws)
}

func (c *conn) unwatchAll() {
	for sid := range c.watched {
		c.h.hub.Unwatch(sid, c.ws)
	}
}

func (c *conn) readLoop(ctx context.Context) {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client")
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(ctx, Reply{Type: "error", Message: "invalid message"})
			continue
		}

		switch msg.Type {
		case "ping":
			c.send(ctx, Reply{Type: "pong"})
		case "start":
			c.run(ctx, msg, func(runCtx context.Context) (*workflow.Outcome, error) {
				return c.h.planner.Start(runCtx, msg.Location, msg.SessionID, workflow.Options{
					TimeSettings: msg.TimeSettings,
					Theme:        msg.DateTheme,
				})
			})
		case "resume":
			if msg.SessionID == "" {
				c.send(ctx, Reply{Type: "error", Message: "session_id is required"})
				continue
			}
			c.run(ctx, msg, func(runCtx context.Context) (*workflow.Outcome, error) {
				return c.h.planner.Resume(runCtx, msg.SessionID, msg.Feedback)
			})
		default:
			c.send(ctx, Reply{Type: "error", Message: "unknown message type: " + msg.Type})
		}
	}
}

func (c *conn) run(ctx context.Context, msg Message, fn func(context.Context) (*workflow.Outcome, error)) {
	runCtx, cancel := context.WithTimeout(ctx, c.h.runTimeout)
	defer cancel()

	out, err := fn(runCtx)
	if err != nil && out == nil {
		slog.Warn("Planning step failed", "type", msg.Type, "session_id", msg.SessionID, "error", err)
		c.send(ctx, Reply{Type: "error", Message: err.Error()})
		return
	}

	c.watch(out.SessionID)
	reply := Reply{Type: "outcome", Outcome: out}
	data, mErr := json.Marshal(reply)
	if mErr != nil {
		slog.Error("Failed to encode outcome", "error", mErr)
		return
	}
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("Failed to send outcome", "error", err)
	}
	c.h.hub.Broadcast(ctx, out.SessionID, data, c.ws)
}

func (c *conn) send(ctx context.Context, v Reply) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("Failed to send reply", "type", v.Type, "error", err)
	}
}
