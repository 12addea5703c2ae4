package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord represents a captured log record for testing
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Attr returns the value of key, including attributes bound with Logger.With
func (r LogRecord) Attr(key string) (any, bool) {
	v, ok := r.Attrs[key]
	return v, ok
}

type capture struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler is a slog.Handler that keeps every record in memory
type CaptureHandler struct {
	store *capture
	attrs []slog.Attr
	group string
}

// NewCaptureHandler creates an empty capture
func NewCaptureHandler() *CaptureHandler {
	return &CaptureHandler{store: &capture{}}
}

// Enabled implements slog.Handler; every level is captured
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.key(a.Key)] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = append(h.store.records, LogRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler; the child shares the parent's records
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := *h
	child.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	for i := len(h.attrs); i < len(child.attrs); i++ {
		child.attrs[i].Key = h.key(child.attrs[i].Key)
	}
	return &child
}

// WithGroup implements slog.Handler; grouped keys are joined with a dot
func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	child := *h
	child.group = h.key(name)
	return &child
}

func (h *CaptureHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// Records returns a copy of everything captured so far
func (h *CaptureHandler) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	records := make([]LogRecord, len(h.store.records))
	copy(records, h.store.records)
	return records
}

// Find returns the first record at level whose message contains message
func (h *CaptureHandler) Find(level slog.Level, message string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// NewTestLogger creates a logger that captures its output
func NewTestLogger() (*slog.Logger, *CaptureHandler) {
	handler := NewCaptureHandler()
	return slog.New(handler), handler
}

// RequireLog fails the test unless a record at level contains message, and returns it
func RequireLog(t testing.TB, handler *CaptureHandler, level slog.Level, message string) LogRecord {
	t.Helper()

	if r, ok := handler.Find(level, message); ok {
		return r
	}
	t.Errorf("expected %s log containing %q", level, message)
	for _, r := range handler.Records() {
		t.Logf("  captured [%s] %s %v", r.Level, r.Message, r.Attrs)
	}
	t.FailNow()
	return LogRecord{}
}

// AssertNoErrors checks that no error-level logs were recorded
func AssertNoErrors(t testing.TB, handler *CaptureHandler) {
	t.Helper()

	for _, r := range handler.Records() {
		if r.Level >= slog.LevelError {
			t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
		}
	}
}
