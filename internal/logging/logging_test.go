package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolutionLoggerWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	logger := NewResolutionLogger(&buf)

	fragments := make([]string, 40)
	for i := range fragments {
		fragments[i] = "seg"
	}

	resolution := Resolution{
		Timestamp: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		RequestID: "req-1",
		Operation: OpResolve,
		Fragments: fragments,
		Result:    "seg",
		Kind:      "relative",
	}

	if err := logger.Write(resolution); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := logger.Write(Resolution{Operation: OpRelative, Fragments: []string{"/lib/foo", "./bar"}, Result: "/lib/bar"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var parsed Resolution
	if err := json.Unmarshal([]byte(lines[0]), &parsed); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(parsed.Fragments) != maxFragments {
		t.Fatalf("expected %d fragments, got %d", maxFragments, len(parsed.Fragments))
	}
	if strings.Contains(lines[0], `"error"`) {
		t.Fatalf("expected empty error omitted: %s", lines[0])
	}
}

func TestNilResolutionLogger(t *testing.T) {
	var logger *ResolutionLogger
	if err := logger.Write(Resolution{}); err != nil {
		t.Fatalf("expected nil logger to be a no-op, got %v", err)
	}
}

func TestOpenResolutionLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "resolutions.jsonl")
	logger, closer, err := OpenResolutionLog(path)
	if err != nil {
		t.Fatalf("OpenResolutionLog error: %v", err)
	}
	if err := logger.Write(Resolution{Operation: OpTempFile, Result: "/tmp/abc123.tmp"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := closer(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"operation":"tempfile"`) {
		t.Fatalf("unexpected log content %s", data)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "path", "/a")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info suppressed at warn level: %s", out)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if entry["path"] != "/a" {
		t.Fatalf("expected path attribute, got %v", entry["path"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for input, expected := range cases {
		if got := ParseLevel(input); got != expected {
			t.Fatalf("ParseLevel(%q) expected %v, got %v", input, expected, got)
		}
	}
}
