package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriterAppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "events")
	defer w.Close()

	if err := w.Write(map[string]any{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(map[string]any{"a": 2}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "events-*.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one rotated file, got %v", matches)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["a"] != float64(1) {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestWriterBytesWrittenIsHumanized(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "events")
	defer w.Close()

	if err := w.Write(map[string]any{"payload": strings.Repeat("x", 1000)}); err != nil {
		t.Fatal(err)
	}
	if got := w.BytesWritten(); got == "" || got == "0 B" {
		t.Fatalf("expected non-trivial byte count, got %q", got)
	}
}

func TestConnectionLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewConnectionLogger(dir)
	defer l.Close()

	connID := NewConnectionID()
	if connID == "" {
		t.Fatal("expected a non-empty connection id")
	}
	if err := l.Opened(connID); err != nil {
		t.Fatal(err)
	}
	if err := l.PacketIn(connID, 128); err != nil {
		t.Fatal(err)
	}
	if err := l.Closed(connID, "eof"); err != nil {
		t.Fatal(err)
	}
}

func TestAuditLoggerWrite(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	defer l.Close()

	if err := l.Write("conn-1", "malformed varint"); err != nil {
		t.Fatal(err)
	}
}
