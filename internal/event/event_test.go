package event

import (
	"strings"
	"testing"
)

func TestParseCommandPayload(t *testing.T) {
	in := `{"tool_name":"Bash","tool_input":{"command":"ls -la"},"cwd":"/work/project"}`

	ev, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.ToolName != "Bash" {
		t.Errorf("tool = %q, want Bash", ev.ToolName)
	}
	if ev.Command != "ls -la" {
		t.Errorf("command = %q", ev.Command)
	}
	if ev.WorkingDir != "/work/project" {
		t.Errorf("cwd = %q", ev.WorkingDir)
	}
	if ev.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestParseFilePayload(t *testing.T) {
	in := `{"tool_name":"Write","tool_input":{"file_path":"notes.md","content":"hi"},"cwd":"/work"}`

	ev, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.FilePath != "notes.md" {
		t.Errorf("file_path = %q", ev.FilePath)
	}
	if ev.NewContent != "hi" {
		t.Errorf("content = %q", ev.NewContent)
	}
}

func TestParseEditPayloadUsesNewString(t *testing.T) {
	in := `{"tool_name":"Edit","tool_input":{"file_path":"a.go","new_string":"changed"}}`

	ev, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.NewContent != "changed" {
		t.Errorf("content = %q, want changed", ev.NewContent)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"truncated", `{"tool_name":"Bash","tool_input":{"comm`},
		{"not json", "hello world"},
		{"empty", ""},
		{"missing tool_name", `{"tool_input":{"command":"ls"}}`},
		{"no command or file", `{"tool_name":"Bash","tool_input":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.in)); err == nil {
				t.Errorf("Parse(%q) should fail", tt.in)
			}
		})
	}
}

func TestSummarizeDropsContent(t *testing.T) {
	ev := &Event{ToolName: "Write", FilePath: "a.sh", NewContent: "secret body", WorkingDir: "/w"}
	s := ev.Summarize()
	if s.Tool != "Write" || s.FilePath != "a.sh" || s.CWD != "/w" {
		t.Errorf("summary = %+v", s)
	}
}
