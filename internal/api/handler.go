// Package api provides HTTP handlers for the outing planner API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/containerd/errdefs/pkg/errhttp"

	"github.com/ashureev/outing-planner/internal/workflow"
)

// Planner is the workflow surface the handlers drive.
type Planner interface {
	Start(ctx context.Context, request, sessionID string, opts workflow.Options) (*workflow.Outcome, error)
	Resume(ctx context.Context, sessionID, feedback string) (*workflow.Outcome, error)
	Snapshot(ctx context.Context, sessionID string) (*workflow.Outcome, error)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error","message":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"status": "error", "message": message})
}

// ErrorFrom writes err with the HTTP status of its error class. Context
// cancellation maps to 408 Request Timeout rather than 500.
func ErrorFrom(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "status", status)
	}
	Error(w, status, err.Error())
}

func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout
	}
	return errhttp.ToHTTP(err)
}
