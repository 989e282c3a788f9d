package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/outing-planner/internal/domain"
)

func newSQLiteForTest(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "data", "planner.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return s
}

func stores(t *testing.T) map[string]CheckpointStore {
	return map[string]CheckpointStore{
		"sqlite": newSQLiteForTest(t),
		"memory": NewMemory(),
	}
}

func pausedState(id string) *domain.SessionState {
	st := domain.NewSessionState(id, "홍대 데이트")
	st.Status = domain.StatusPaused
	st.NextNode = "discover_activity"
	st.PendingCheckpoint = "ask_activity_preference"
	st.SetCandidates(domain.StageDining, []domain.Venue{{Name: "Noodles", Latitude: 37.5, Longitude: 127.0}})
	st.TimeSettings = &domain.TimeSettings{Enabled: true, StartTime: "14:00"}
	return st
}

func TestCheckpointRoundTrip(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := s.Load(ctx, "missing")
			if err != nil {
				t.Fatalf("Load missing failed: %v", err)
			}
			if got != nil {
				t.Fatalf("Expected nil for missing session, got %+v", got)
			}

			if err := s.Save(ctx, "s1", pausedState("s1")); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err = s.Load(ctx, "s1")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got == nil {
				t.Fatal("Expected stored state")
			}
			if got.NextNode != "discover_activity" || got.PendingCheckpoint != "ask_activity_preference" {
				t.Errorf("Expected continuation to survive, got next=%q pending=%q", got.NextNode, got.PendingCheckpoint)
			}
			if dining := got.CandidatesFor(domain.StageDining); len(dining) != 1 || dining[0].Name != "Noodles" {
				t.Errorf("Expected dining candidates to survive, got %+v", dining)
			}
			if got.TimeSettings == nil || got.TimeSettings.StartTime != "14:00" {
				t.Errorf("Expected time settings to survive, got %+v", got.TimeSettings)
			}

			// Overwrite.
			got.Status = domain.StatusCompleted
			got.PendingCheckpoint = ""
			if err := s.Save(ctx, "s1", got); err != nil {
				t.Fatalf("Save overwrite failed: %v", err)
			}
			again, err := s.Load(ctx, "s1")
			if err != nil {
				t.Fatalf("Load after overwrite failed: %v", err)
			}
			if again.Status != domain.StatusCompleted {
				t.Errorf("Expected completed status, got %s", again.Status)
			}

			list, err := s.List(ctx, 10)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(list) != 1 || list[0].SessionID != "s1" || list[0].Status != domain.StatusCompleted {
				t.Errorf("Unexpected listing: %+v", list)
			}

			if err := s.Delete(ctx, "s1"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			got, err = s.Load(ctx, "s1")
			if err != nil || got != nil {
				t.Errorf("Expected deleted session, got %+v (err %v)", got, err)
			}

			if err := s.Ping(ctx); err != nil {
				t.Errorf("Ping failed: %v", err)
			}
		})
	}
}

func TestLoadedStateIsIndependent(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			st := pausedState("s1")
			intent := domain.DefaultIntent("홍대")
			intent.Activity.Keywords = []string{"전시"}
			st.Intent = &intent
			if err := s.Save(ctx, "s1", st); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			// Mutating the saved value must not leak into the store.
			st.Intent.Activity.Keywords[0] = "changed"
			st.CandidateLists[domain.StageDining][0].Name = "changed"
			st.TimeSettings.StartTime = "09:00"

			first, err := s.Load(ctx, "s1")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got := first.Intent.Activity.Keywords; len(got) != 1 || got[0] != "전시" {
				t.Errorf("Expected stored keywords [전시], got %v", got)
			}
			if got := first.CandidatesFor(domain.StageDining)[0].Name; got != "Noodles" {
				t.Errorf("Expected stored candidate Noodles, got %q", got)
			}
			if got := first.TimeSettings.StartTime; got != "14:00" {
				t.Errorf("Expected stored start 14:00, got %q", got)
			}

			// Nor may a loaded value share references with later loads.
			first.Intent.Activity.Keywords[0] = "mutated"
			second, err := s.Load(ctx, "s1")
			if err != nil {
				t.Fatalf("Second load failed: %v", err)
			}
			if got := second.Intent.Activity.Keywords[0]; got != "전시" {
				t.Errorf("Expected independent load, got keyword %q", got)
			}
		})
	}
}

func TestCleanupExpired(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Save(ctx, "old", pausedState("old")); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			deleted, err := s.CleanupExpired(ctx, time.Hour)
			if err != nil {
				t.Fatalf("CleanupExpired failed: %v", err)
			}
			if deleted != 0 {
				t.Errorf("Expected nothing expired yet, got %d", deleted)
			}

			deleted, err = s.CleanupExpired(ctx, -time.Hour)
			if err != nil {
				t.Fatalf("CleanupExpired failed: %v", err)
			}
			if deleted != 1 {
				t.Errorf("Expected 1 expired checkpoint, got %d", deleted)
			}
		})
	}
}

func TestTTLWorkerSweeps(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Save(ctx, "stale", pausedState("stale")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	done := make(chan int64, 1)
	startTTLWorker(ctx, s, -time.Hour, 10*time.Millisecond, func(deleted int64) {
		select {
		case done <- deleted:
		default:
		}
	})

	select {
	case n := <-done:
		if n != 1 {
			t.Errorf("Expected 1 removed checkpoint, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("TTL worker did not sweep in time")
	}

	got, err := s.Load(ctx, "stale")
	if err != nil || got != nil {
		t.Errorf("Expected stale checkpoint removed, got %+v (err %v)", got, err)
	}
}
