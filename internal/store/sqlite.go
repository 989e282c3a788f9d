package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements CheckpointStore using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex // serializes writers to avoid SQLITE_BUSY under WAL
}

// NewSQLite creates a new SQLite-backed checkpoint store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS checkpoints (
		session_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		next_node TEXT,
		pending_checkpoint TEXT,
		request TEXT NOT NULL,
		state_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checkpoints_updated ON checkpoints(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load retrieves the checkpoint of a session.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	query := `SELECT state_json FROM checkpoints WHERE session_id = ?`

	var stateJSON string
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan checkpoint: %w", err)
	}

	var st domain.SessionState
	if err := json.Unmarshal([]byte(stateJSON), &st); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", sessionID, err)
	}
	return &st, nil
}

// Save creates or replaces the checkpoint of a session.
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, st *domain.SessionState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	query := `
	INSERT INTO checkpoints (session_id, status, next_node, pending_checkpoint, request, state_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		status = excluded.status,
		next_node = excluded.next_node,
		pending_checkpoint = excluded.pending_checkpoint,
		request = excluded.request,
		state_json = excluded.state_json,
		updated_at = excluded.updated_at`

	var pending interface{}
	if st.PendingCheckpoint != "" {
		pending = st.PendingCheckpoint
	}
	createdAt := st.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return shared.WithSQLiteRetry(ctx, "upsert checkpoint", shared.DefaultRetryPolicy, func() error {
		_, err := s.db.ExecContext(ctx, query,
			sessionID, string(st.Status), st.NextNode, pending, st.Request, string(data),
			createdAt.Unix(), time.Now().Unix(),
		)
		return err
	})
}

// Delete removes the checkpoint of a session.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return shared.WithSQLiteRetry(ctx, "delete checkpoint", shared.DefaultRetryPolicy, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE session_id = ?`, sessionID)
		return err
	})
}

// List returns the most recently updated sessions.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT session_id, status, pending_checkpoint, request, updated_at
		FROM checkpoints ORDER BY updated_at DESC, session_id LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close checkpoint rows", "error", closeErr)
		}
	}()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var status string
		var pending sql.NullString
		var updatedAt int64
		if err := rows.Scan(&sum.SessionID, &status, &pending, &sum.Request, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan checkpoint row: %w", err)
		}
		sum.Status = domain.SessionStatus(status)
		sum.PendingCheckpoint = pending.String
		sum.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return out, nil
}

// CleanupExpired removes checkpoints not updated within ttl.
func (s *SQLiteStore) CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var deleted int64
	err := shared.WithSQLiteRetry(ctx, "cleanup checkpoints", shared.DefaultRetryPolicy, func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE updated_at < ?`, threshold)
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		return err
	})
	return deleted, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
