package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session events are appended as JSON lines to events.jsonl under the data
// dir. Emission is best effort: a full disk or unwritable path drops events
// silently rather than disturbing the UI.
type telemetryEvent struct {
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Project   string            `json:"project,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

type telemetryLogger struct {
	path      string
	sessionID string
	mu        sync.Mutex
}

func newTelemetryLogger(dataDir string) *telemetryLogger {
	_ = os.MkdirAll(dataDir, 0o755)
	return &telemetryLogger{
		path:      filepath.Join(dataDir, "events.jsonl"),
		sessionID: uuid.NewString(),
	}
}

func (t *telemetryLogger) Emit(event, project string, extra map[string]string) {
	if t == nil || strings.TrimSpace(event) == "" {
		return
	}
	record := telemetryEvent{
		SessionID: t.sessionID,
		Timestamp: time.Now().UTC(),
		Event:     event,
		Project:   project,
	}
	if len(extra) > 0 {
		record.Extra = extra
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	data = append(data, '\n')
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(data)
}
