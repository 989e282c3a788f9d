package history

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesPerSessionNDJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec, err := New(Config{Enabled: true, Dir: dir, QueueSize: 16}, slog.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = rec.Close() }()

	rec.Record(Event{SessionID: "sess-1", EventType: "node_finished", Node: "discover_cafe", DurationMS: 12})

	line := waitForLogLine(t, filepath.Join(dir, "sess-1.ndjson"))
	var got Event
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("failed to unmarshal log line: %v", err)
	}
	if got.Node != "discover_cafe" {
		t.Fatalf("unexpected node: %q", got.Node)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be populated")
	}
}

func TestLoggerCloseFlushes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec, err := New(Config{Enabled: true, Dir: dir, QueueSize: 64}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		rec.Record(Event{SessionID: "s", EventType: "step"})
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Recording after close is a no-op.
	rec.Record(Event{SessionID: "s", EventType: "late"})

	data, err := os.ReadFile(filepath.Join(dir, "s.ndjson"))
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if n := len(strings.Split(strings.TrimSpace(string(data)), "\n")); n != 10 {
		t.Errorf("Expected 10 lines, got %d", n)
	}
}

func TestNewDisabledIsNop(t *testing.T) {
	t.Parallel()

	rec, err := New(Config{}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rec.Record(Event{SessionID: "x"})
	if err := rec.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestFileNameSanitizes(t *testing.T) {
	t.Parallel()

	if got := FileName("../../etc/passwd"); strings.Contains(got, "/") {
		t.Errorf("Expected path separators stripped, got %q", got)
	}
	if got := FileName(""); got != "unknown.ndjson" {
		t.Errorf("Expected unknown.ndjson, got %q", got)
	}
}

func waitForLogLine(t *testing.T, path string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) > 0 {
				return lines[len(lines)-1]
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for log file %s", path)
	return ""
}
