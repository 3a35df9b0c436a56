// Package event defines the normalized Event submitted for evaluation
// and the parsing of the host's hook payload into it.
package event

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// MaxPayloadBytes caps the stdin payload to keep one-shot evaluations bounded.
const MaxPayloadBytes = 1 << 20

// Event is one proposed action, immutable once constructed.
type Event struct {
	ToolName   string
	Command    string
	FilePath   string
	NewContent string
	WorkingDir string
	Timestamp  time.Time
}

// payload is the host's wire shape: a PreToolUse hook JSON document.
type payload struct {
	ToolName  string         `json:"tool_name"`
	ToolInput map[string]any `json:"tool_input"`
	CWD       string         `json:"cwd"`
}

// Parse reads one JSON payload from r and builds an Event.
// A payload must carry tool_name and at least one of command or file_path.
func Parse(r io.Reader) (*Event, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("event: read payload: %w", err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("event: parse payload: %w", err)
	}
	if p.ToolName == "" {
		return nil, fmt.Errorf("event: payload missing tool_name")
	}

	ev := &Event{
		ToolName:   p.ToolName,
		Command:    stringField(p.ToolInput, "command"),
		FilePath:   stringField(p.ToolInput, "file_path"),
		WorkingDir: p.CWD,
		Timestamp:  time.Now().UTC(),
	}

	ev.NewContent = stringField(p.ToolInput, "content")
	if ev.NewContent == "" {
		ev.NewContent = stringField(p.ToolInput, "new_string")
	}

	if ev.Command == "" && ev.FilePath == "" {
		return nil, fmt.Errorf("event: payload carries neither command nor file_path")
	}

	if ev.WorkingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			ev.WorkingDir = wd
		}
	}

	return ev, nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// Summary is the flattened event shape stored in audit records.
type Summary struct {
	Tool     string `json:"tool"`
	Command  string `json:"command,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	CWD      string `json:"cwd,omitempty"`
}

// Summarize flattens an Event for audit storage, dropping file content.
func (e *Event) Summarize() Summary {
	return Summary{
		Tool:     e.ToolName,
		Command:  e.Command,
		FilePath: e.FilePath,
		CWD:      e.WorkingDir,
	}
}
