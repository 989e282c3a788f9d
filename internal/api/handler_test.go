//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/identity"
	"github.com/ashureev/outing-planner/internal/workflow"
)

type fakePlanner struct {
	startReq  string
	startID   string
	startOpts workflow.Options
	resumeID  string
	feedback  string
	out       *workflow.Outcome
	err       error
}

func (f *fakePlanner) Start(_ context.Context, request, sessionID string, opts workflow.Options) (*workflow.Outcome, error) {
	f.startReq, f.startID, f.startOpts = request, sessionID, opts
	return f.out, f.err
}

func (f *fakePlanner) Resume(_ context.Context, sessionID, feedback string) (*workflow.Outcome, error) {
	f.resumeID, f.feedback = sessionID, feedback
	return f.out, f.err
}

func (f *fakePlanner) Snapshot(_ context.Context, sessionID string) (*workflow.Outcome, error) {
	f.resumeID = sessionID
	return f.out, f.err
}

func newRouter(p Planner) http.Handler {
	r := chi.NewRouter()
	NewItineraryHandler(p, time.Second).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return got
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestErrorFromStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no active session", fmt.Errorf("resume x: %w", workflow.ErrNoActiveSession), http.StatusConflict},
		{"busy", workflow.ErrSessionBusy, http.StatusConflict},
		{"not found", workflow.ErrSessionNotFound, http.StatusNotFound},
		{"invalid", workflow.ErrEmptyRequest, http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, http.StatusRequestTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFrom(w, tt.err)
			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
			got := decodeBody(t, w)
			if got["status"] != "error" {
				t.Errorf("Expected status=error, got %v", got["status"])
			}
			if got["message"] != tt.err.Error() {
				t.Errorf("Expected message %q, got %v", tt.err.Error(), got["message"])
			}
		})
	}
}

func TestPlan(t *testing.T) {
	p := &fakePlanner{out: &workflow.Outcome{
		Status:            domain.StatusPaused,
		SessionID:         "s1",
		PendingCheckpoint: []string{"ask_activity_preference"},
		Prompt:            "What kind of activity?",
	}}

	body := `{"location":"홍대","session_id":"s1","time_settings":{"enabled":true,"start_time":"14:00"},"date_theme":{"theme":"culture"}}`
	w := do(t, newRouter(p), http.MethodPost, "/api/itinerary/plan", body)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if p.startReq != "홍대" || p.startID != "s1" {
		t.Errorf("Expected Start(홍대, s1), got Start(%s, %s)", p.startReq, p.startID)
	}
	if p.startOpts.TimeSettings == nil || p.startOpts.TimeSettings.StartTime != "14:00" {
		t.Errorf("Expected time settings to be forwarded, got %+v", p.startOpts.TimeSettings)
	}
	if p.startOpts.Theme == nil || p.startOpts.Theme.Theme != "culture" {
		t.Errorf("Expected theme to be forwarded, got %+v", p.startOpts.Theme)
	}
	got := decodeBody(t, w)
	if got["status"] != string(domain.StatusPaused) {
		t.Errorf("Expected status awaiting_input, got %v", got["status"])
	}
}

func TestPlanValidation(t *testing.T) {
	p := &fakePlanner{}
	h := newRouter(p)

	if w := do(t, h, http.MethodPost, "/api/itinerary/plan", `{"location":"  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty location, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/itinerary/plan", `{not json`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", w.Code)
	}
	if p.startReq != "" {
		t.Error("Expected Start not to be called")
	}
}

func TestFeedback(t *testing.T) {
	p := &fakePlanner{out: &workflow.Outcome{Status: domain.StatusCompleted, SessionID: "s1"}}
	w := do(t, newRouter(p), http.MethodPost, "/api/itinerary/feedback", `{"session_id":"s1","feedback":"done"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if p.resumeID != "s1" || p.feedback != "done" {
		t.Errorf("Expected Resume(s1, done), got Resume(%s, %s)", p.resumeID, p.feedback)
	}
}

func TestFeedbackNoActiveSession(t *testing.T) {
	p := &fakePlanner{err: fmt.Errorf("resume s1: %w", workflow.ErrNoActiveSession)}
	w := do(t, newRouter(p), http.MethodPost, "/api/itinerary/feedback", `{"session_id":"s1","feedback":"done"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", w.Code)
	}
	if got := decodeBody(t, w); got["status"] != "error" {
		t.Errorf("Expected error body, got %v", got)
	}
}

func TestFeedbackRequiresSession(t *testing.T) {
	w := do(t, newRouter(&fakePlanner{}), http.MethodPost, "/api/itinerary/feedback", `{"feedback":"done"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestFailedRunReturnsOutcome(t *testing.T) {
	p := &fakePlanner{
		out: &workflow.Outcome{Status: domain.StatusFailed, SessionID: "s1", Message: "step limit exceeded"},
		err: workflow.ErrStepLimit,
	}
	w := do(t, newRouter(p), http.MethodPost, "/api/itinerary/feedback", `{"session_id":"s1","feedback":"x"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if got := decodeBody(t, w); got["status"] != string(domain.StatusFailed) {
		t.Errorf("Expected error outcome, got %v", got)
	}
}

func TestGetItinerary(t *testing.T) {
	p := &fakePlanner{out: &workflow.Outcome{Status: domain.StatusCompleted, SessionID: "abc"}}
	w := do(t, newRouter(p), http.MethodGet, "/api/itinerary/abc", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if p.resumeID != "abc" {
		t.Errorf("Expected snapshot of abc, got %s", p.resumeID)
	}

	p.err = workflow.ErrSessionNotFound
	if w := do(t, newRouter(p), http.MethodGet, "/api/itinerary/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("down") })

	r := chi.NewRouter()
	NewHealthHandler(map[string]Pinger{"database": ok}, time.Second).RegisterHealth(r)
	w := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := decodeBody(t, w); got["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", got["status"])
	}

	r = chi.NewRouter()
	NewHealthHandler(map[string]Pinger{"database": ok, "textgen": down}, time.Second).RegisterHealth(r)
	w = do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}
	got := decodeBody(t, w)
	checks := got["checks"].(map[string]interface{})
	if checks["textgen"] != "unreachable" || checks["database"] != "ok" {
		t.Errorf("Unexpected checks: %v", checks)
	}
}

func TestFeedbackSessionFromHeader(t *testing.T) {
	p := &fakePlanner{out: &workflow.Outcome{Status: domain.StatusCompleted, SessionID: "hdr"}}
	r := chi.NewRouter()
	r.Use(identity.Middleware(true))
	NewItineraryHandler(p, 0).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/itinerary/feedback", strings.NewReader(`{"feedback":"done"}`))
	req.Header.Set(identity.SessionHeaderName, "hdr")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if p.resumeID != "hdr" {
		t.Errorf("Expected session from header, got %q", p.resumeID)
	}
}
