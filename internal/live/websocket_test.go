package live

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/workflow"
)

type fakePlanner struct{}

func (fakePlanner) Start(_ context.Context, request, sessionID string, _ workflow.Options) (*workflow.Outcome, error) {
	return &workflow.Outcome{
		Status:            domain.StatusPaused,
		SessionID:         sessionID,
		PendingCheckpoint: []string{"ask_activity_preference"},
		Progress:          []string{"Planning an outing around " + request},
	}, nil
}

func (fakePlanner) Resume(_ context.Context, sessionID, _ string) (*workflow.Outcome, error) {
	if sessionID == "missing" {
		return nil, workflow.ErrNoActiveSession
	}
	return &workflow.Outcome{Status: domain.StatusCompleted, SessionID: sessionID}, nil
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { _ = c.CloseNow() })
	return c
}

func roundTrip(t *testing.T, c *websocket.Conn, msg Message) Reply {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, c, msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	var reply Reply
	if err := wsjson.Read(ctx, c, &reply); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return reply
}

func TestSocketConversation(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(NewHandler(fakePlanner{}, hub, "", true))
	defer srv.Close()
	c := dial(t, srv)

	if reply := roundTrip(t, c, Message{Type: "ping"}); reply.Type != "pong" {
		t.Errorf("Expected pong, got %q", reply.Type)
	}

	reply := roundTrip(t, c, Message{Type: "start", SessionID: "s1", Location: "Hongdae"})
	if reply.Type != "outcome" || reply.Outcome == nil {
		t.Fatalf("Expected outcome, got %+v", reply)
	}
	if reply.Outcome.Status != domain.StatusPaused {
		t.Errorf("Expected awaiting_input, got %s", reply.Outcome.Status)
	}
	if hub.Watchers("s1") != 1 {
		t.Errorf("Expected 1 watcher, got %d", hub.Watchers("s1"))
	}

	reply = roundTrip(t, c, Message{Type: "resume", SessionID: "s1", Feedback: "exhibition"})
	if reply.Outcome == nil || reply.Outcome.Status != domain.StatusCompleted {
		t.Errorf("Expected completed outcome, got %+v", reply)
	}
}

func TestSocketErrors(t *testing.T) {
	srv := httptest.NewServer(NewHandler(fakePlanner{}, nil, "", true))
	defer srv.Close()
	c := dial(t, srv)

	tests := []struct {
		msg  Message
		want string
	}{
		{Message{Type: "resume"}, "session_id is required"},
		{Message{Type: "resume", SessionID: "missing"}, workflow.ErrNoActiveSession.Error()},
		{Message{Type: "dance"}, "unknown message type: dance"},
	}
	for _, tt := range tests {
		reply := roundTrip(t, c, tt.msg)
		if reply.Type != "error" || reply.Message != tt.want {
			t.Errorf("Expected error %q, got %+v", tt.want, reply)
		}
	}
}

func TestBroadcastToOtherWatchers(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(NewHandler(fakePlanner{}, hub, "", true))
	defer srv.Close()

	watcher := dial(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if reply := roundTrip(t, watcher, Message{Type: "start", SessionID: "shared", Location: "Hongdae"}); reply.Type != "outcome" {
		t.Fatalf("Expected outcome, got %+v", reply)
	}

	driver := dial(t, srv)
	if reply := roundTrip(t, driver, Message{Type: "resume", SessionID: "shared", Feedback: "x"}); reply.Type != "outcome" {
		t.Fatalf("Expected outcome, got %+v", reply)
	}

	var pushed Reply
	if err := wsjson.Read(ctx, watcher, &pushed); err != nil {
		t.Fatalf("Expected broadcast, got %v", err)
	}
	if pushed.Outcome == nil || pushed.Outcome.Status != domain.StatusCompleted {
		t.Errorf("Expected completed outcome broadcast, got %+v", pushed)
	}
}

func TestOriginCheck(t *testing.T) {
	h := NewHandler(fakePlanner{}, nil, "http://app.test", false)

	req := httptest.NewRequest("GET", "/ws/plan", nil)
	req.Header.Set("Origin", "http://evil.test")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != 403 {
		t.Errorf("Expected 403, got %d", w.Code)
	}
}
