// Package store persists planning-session checkpoints.
package store

import (
	"context"
	"time"

	"github.com/ashureev/outing-planner/internal/domain"
)

// CheckpointStore persists the continuation of planning sessions.
type CheckpointStore interface {
	// Load returns the state saved for sessionID, or nil when none exists.
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)

	// Save creates or replaces the checkpoint of sessionID.
	Save(ctx context.Context, sessionID string, st *domain.SessionState) error

	// Delete removes the checkpoint of sessionID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the most recently updated sessions, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// CleanupExpired removes checkpoints idle for longer than ttl.
	CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store.
	Close() error
}

// Summary is a listing row for a stored session.
type Summary struct {
	SessionID         string               `json:"session_id"`
	Status            domain.SessionStatus `json:"status"`
	PendingCheckpoint string               `json:"pending_checkpoint,omitempty"`
	Request           string               `json:"request"`
	UpdatedAt         time.Time            `json:"updated_at"`
}
