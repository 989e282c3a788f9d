package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/identity"
	"github.com/ashureev/outing-planner/internal/workflow"
)

// maxBodyBytes bounds plan and feedback request bodies.
const maxBodyBytes = 64 << 10

// PlanRequest starts a planning session.
type PlanRequest struct {
	Location     string               `json:"location"`
	SessionID    string               `json:"session_id"`
	TimeSettings *domain.TimeSettings `json:"time_settings,omitempty"`
	DateTheme    *domain.DateTheme    `json:"date_theme,omitempty"`
}

// FeedbackRequest answers the pending question of a session.
type FeedbackRequest struct {
	SessionID string `json:"session_id"`
	Feedback  string `json:"feedback"`
}

// ItineraryHandler handles the planning endpoints.
type ItineraryHandler struct {
	planner Planner
	timeout time.Duration
}

// NewItineraryHandler creates an itinerary handler. A zero timeout leaves
// request contexts as they are.
func NewItineraryHandler(planner Planner, timeout time.Duration) *ItineraryHandler {
	return &ItineraryHandler{planner: planner, timeout: timeout}
}

// RegisterRoutes registers itinerary routes.
func (h *ItineraryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/itinerary", func(r chi.Router) {
		r.Post("/plan", h.Plan)
		r.Post("/feedback", h.Feedback)
		r.Get("/{sessionID}", h.Get)
	})
}

// Plan starts a new planning session.
func (h *ItineraryHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		req.SessionID = identity.SessionIDFromContext(r.Context())
	}
	if strings.TrimSpace(req.Location) == "" {
		Error(w, http.StatusBadRequest, "location is required")
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	slog.Info("Plan requested", "session_id", req.SessionID, "client_id", identity.ClientIDFromContext(r.Context()), "location", req.Location)
	out, err := h.planner.Start(ctx, req.Location, req.SessionID, workflow.Options{
		TimeSettings: req.TimeSettings,
		Theme:        req.DateTheme,
	})
	respond(w, out, err)
}

// Feedback resumes a paused session with the user's answer.
func (h *ItineraryHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		req.SessionID = identity.SessionIDFromContext(r.Context())
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	slog.Info("Feedback received", "session_id", req.SessionID)
	out, err := h.planner.Resume(ctx, req.SessionID, req.Feedback)
	respond(w, out, err)
}

// Get returns the stored view of a session.
func (h *ItineraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.planner.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		ErrorFrom(w, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

func (h *ItineraryHandler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respond writes an outcome. A failed run that still produced an outcome is
// reported as an error outcome with the error's status.
func respond(w http.ResponseWriter, out *workflow.Outcome, err error) {
	if err == nil {
		JSON(w, http.StatusOK, out)
		return
	}
	if out == nil {
		ErrorFrom(w, err)
		return
	}
	slog.Error("Planning run failed", "session_id", out.SessionID, "error", err)
	JSON(w, statusFor(err), out)
}
