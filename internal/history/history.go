// Package history writes a per-session NDJSON log of workflow steps.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

// Event is one line of a session's run history.
type Event struct {
	Timestamp  time.Time `json:"ts"`
	SessionID  string    `json:"session_id"`
	EventType  string    `json:"event_type"`
	Node       string    `json:"node,omitempty"`
	Status     string    `json:"status,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

// Recorder accepts history events. Record must not block the caller.
type Recorder interface {
	Record(Event)
	Close() error
}

// Config holds configuration for the NDJSON history log.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

type nopRecorder struct{}

func (nopRecorder) Record(Event) {}
func (nopRecorder) Close() error { return nil }

// Nop returns a Recorder that discards events.
func Nop() Recorder { return nopRecorder{} }

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Logger writes events asynchronously to <dir>/<session_id>.ndjson.
type Logger struct {
	dir    string
	queue  chan Event
	logger *slog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// New creates a history recorder. A disabled config yields Nop.
func New(cfg Config, logger *slog.Logger) (Recorder, error) {
	if !cfg.Enabled {
		return Nop(), nil
	}
	if cfg.Dir == "" {
		return nil, errors.New("history log dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	l := &Logger{
		dir:    cfg.Dir,
		queue:  make(chan Event, cfg.QueueSize),
		logger: logger,
	}
	l.wg.Add(1)
	go l.run()
	return l, nil
}

// Record enqueues an event, dropping it when the queue is full.
func (l *Logger) Record(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- ev:
	default:
		l.logger.Warn("History queue full, dropping event", "session_id", ev.SessionID, "event_type", ev.EventType)
	}
}

// Close flushes queued events and stops the writer.
func (l *Logger) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.queue)
		l.mu.Unlock()
	})
	l.wg.Wait()
	return nil
}

func (l *Logger) run() {
	defer l.wg.Done()
	for ev := range l.queue {
		if err := l.write(ev); err != nil {
			l.logger.Warn("Failed to write history event", "session_id", ev.SessionID, "error", err)
		}
	}
}

func (l *Logger) write(ev Event) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	path := filepath.Join(l.dir, FileName(ev.SessionID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append history event: %w", err)
	}
	return nil
}

// FileName returns the log file name of a session.
func FileName(sessionID string) string {
	name := unsafeName.ReplaceAllString(sessionID, "_")
	if name == "" {
		name = "unknown"
	}
	return name + ".ndjson"
}
