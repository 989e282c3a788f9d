package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ashureev/outing-planner/internal/domain"
)

type memoryEntry struct {
	data      []byte
	summary   Summary
	updatedAt time.Time
}

// MemoryStore implements CheckpointStore in process memory. States are
// stored encoded so callers never share references with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load implements CheckpointStore.
func (m *MemoryStore) Load(_ context.Context, sessionID string) (*domain.SessionState, error) {
	m.mu.RLock()
	e, ok := m.entries[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var st domain.SessionState
	if err := json.Unmarshal(e.data, &st); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", sessionID, err)
	}
	return &st, nil
}

// Save implements CheckpointStore.
func (m *MemoryStore) Save(_ context.Context, sessionID string, st *domain.SessionState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = memoryEntry{
		data: data,
		summary: Summary{
			SessionID:         sessionID,
			Status:            st.Status,
			PendingCheckpoint: st.PendingCheckpoint,
			Request:           st.Request,
			UpdatedAt:         now,
		},
		updatedAt: now,
	}
	return nil
}

// Delete implements CheckpointStore.
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// List implements CheckpointStore.
func (m *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.summary)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].SessionID < out[j].SessionID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CleanupExpired implements CheckpointStore.
func (m *MemoryStore) CleanupExpired(_ context.Context, ttl time.Duration) (int64, error) {
	threshold := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, e := range m.entries {
		if e.updatedAt.Before(threshold) {
			delete(m.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping implements CheckpointStore.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close implements CheckpointStore.
func (m *MemoryStore) Close() error { return nil }
