package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogEntry is one decoded JSON log line.
type LogEntry map[string]any

// Message returns the msg field of the entry.
func (e LogEntry) Message() string {
	msg, _ := e["msg"].(string)
	return msg
}

// LogRecorder collects log output in tests. It is safe for use by the
// worker goroutines of the code under test.
type LogRecorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (r *LogRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// String returns everything written so far.
func (r *LogRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// Entries decodes every recorded line, failing the test on malformed output.
func (r *LogRecorder) Entries(t *testing.T) []LogEntry {
	t.Helper()

	var entries []LogEntry
	scanner := bufio.NewScanner(strings.NewReader(r.String()))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %v\n%s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

// EntriesWithMessage returns the recorded entries whose msg equals msg.
func (r *LogRecorder) EntriesWithMessage(t *testing.T, msg string) []LogEntry {
	t.Helper()

	var matched []LogEntry
	for _, e := range r.Entries(t) {
		if e.Message() == msg {
			matched = append(matched, e)
		}
	}
	return matched
}

// GetTestLogger returns a debug-level JSON logger and the recorder it writes to.
func GetTestLogger(t *testing.T) (*slog.Logger, *LogRecorder) {
	t.Helper()

	rec := &LogRecorder{}
	return slog.New(slog.NewJSONHandler(rec, &slog.HandlerOptions{Level: slog.LevelDebug})), rec
}

// AssertLogContains fails the test unless some log entry has the message msg.
func AssertLogContains(t *testing.T, rec *LogRecorder, msg string) {
	t.Helper()

	if len(rec.EntriesWithMessage(t, msg)) == 0 {
		t.Errorf("expected a log entry with message %q\nlogs:\n%s", msg, rec.String())
	}
}
