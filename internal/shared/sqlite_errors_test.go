package shared

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIsSQLiteConflictError(t *testing.T) {
	t.Parallel()

	if IsSQLiteConflictError(nil) {
		t.Error("Expected nil error to not be a conflict")
	}
	if !IsSQLiteConflictError(errors.New("exec: SQLITE_BUSY")) {
		t.Error("Expected SQLITE_BUSY to be a conflict")
	}
	if !IsSQLiteConflictError(errors.New("database is locked (5)")) {
		t.Error("Expected locked database to be a conflict")
	}
	if IsSQLiteConflictError(errors.New("no such table")) {
		t.Error("Expected schema error to not be a conflict")
	}
}

func TestWithSQLiteRetry(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := WithSQLiteRetry(context.Background(), "save", policy, func() error {
		calls++
		if calls < 3 {
			return errors.New("SQLITE_BUSY")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}

	calls = 0
	permanent := errors.New("constraint failed")
	err = WithSQLiteRetry(context.Background(), "save", policy, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("Expected wrapped permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected no retry for permanent error, got %d calls", calls)
	}
}
