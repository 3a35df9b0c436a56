package guard

import (
	"testing"

	"github.com/avolkov/hookgate/internal/event"
)

func bashEvent(command, cwd string) *event.Event {
	return &event.Event{ToolName: "Bash", Command: command, WorkingDir: cwd}
}

func TestPathBoundaryCD(t *testing.T) {
	g := NewPathBoundary("/work/project", []string{"/tmp/scratch"})

	tests := []struct {
		name    string
		command string
		blocked bool
	}{
		{"escape via dotdot", "cd ../outside-project", true},
		{"escape absolute", "cd /etc", true},
		{"escape in chain", "make build && cd /var/log", true},
		{"inside relative", "cd src/module", false},
		{"inside absolute", "cd /work/project/src", false},
		{"allowlisted", "cd /tmp/scratch/build", false},
		{"no cd at all", "ls -la ..", false},
		{"cd dash", "cd -", false},
		{"quoted target", `cd "../outside"`, true},
		{"flag then escape", "cd -P /etc", true},
		{"flag then inside", "cd -P src/module", false},
		{"double dash then escape", "cd -- ../outside", true},
		{"flag only", "cd -P", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Check(bashEvent(tt.command, "/work/project"))
			if d.Blocked != tt.blocked {
				t.Errorf("Check(%q).Blocked = %v, want %v (reason %q)",
					tt.command, d.Blocked, tt.blocked, d.Reason)
			}
			if d.Guard != PathBoundaryName {
				t.Errorf("guard name = %q", d.Guard)
			}
		})
	}
}

func TestPathBoundaryFilePath(t *testing.T) {
	g := NewPathBoundary("/work/project", nil)

	outside := &event.Event{ToolName: "Write", FilePath: "/etc/passwd", WorkingDir: "/work/project"}
	if d := g.Check(outside); !d.Blocked {
		t.Error("absolute path outside root should block")
	}

	escape := &event.Event{ToolName: "Write", FilePath: "../sibling/x.go", WorkingDir: "/work/project"}
	if d := g.Check(escape); !d.Blocked {
		t.Error("relative escape should block")
	}

	inside := &event.Event{ToolName: "Write", FilePath: "src/x.go", WorkingDir: "/work/project"}
	if d := g.Check(inside); d.Blocked {
		t.Errorf("path inside root should pass: %s", d.Reason)
	}
}
