// Package audit keeps a JSON-lines trail of publish operations.
package audit

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Entry struct {
	Timestamp   time.Time     `json:"timestamp"`
	RequestID   string        `json:"request_id"`
	Fingerprint string        `json:"fingerprint"`
	DocumentID  string        `json:"document_id,omitempty"`
	Outcome     string        `json:"outcome"`
	Appended    int           `json:"appended"`
	Duration    time.Duration `json:"duration_ns"`
	LatencyMs   int64         `json:"latency_ms"`
	Error       string        `json:"error,omitempty"`
}

type Logger struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewLogger(w io.Writer) *Logger {
	return &Logger{writer: w}
}

// NewFileLogger appends entries to path and mirrors them to stdout.
func NewFileLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is from application config
	if err != nil {
		return nil, err
	}
	return NewLogger(io.MultiWriter(os.Stdout, f)), nil
}

func (l *Logger) Record(entry Entry) {
	if l == nil {
		return
	}
	entry.Timestamp = time.Now()
	entry.LatencyMs = entry.Duration.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := json.NewEncoder(l.writer).Encode(entry); err != nil {
		slog.Error("failed to write audit entry", "error", err)
	}
}
