package guard

import (
	"testing"

	"github.com/avolkov/hookgate/internal/event"
)

func writeEvent(path string) *event.Event {
	return &event.Event{ToolName: "Write", FilePath: path, WorkingDir: "/work"}
}

func TestInstallScript(t *testing.T) {
	g := NewInstallScript("install.sh")

	tests := []struct {
		path    string
		blocked bool
	}{
		{"install-foo.sh", true},
		{"scripts/install_db.bash", true},
		{"INSTALL-extra.sh", true},
		{"install.sh", false},      // the designated entry point
		{"safe_install.sh", false}, // "install" is not the leading token
		{"installer.py", false},    // not a shell script
		{"readme.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d := g.Check(writeEvent(tt.path))
			if d.Blocked != tt.blocked {
				t.Errorf("Check(%q).Blocked = %v, want %v", tt.path, d.Blocked, tt.blocked)
			}
		})
	}
}

func TestInstallScriptIgnoresReads(t *testing.T) {
	g := NewInstallScript("install.sh")

	ev := &event.Event{ToolName: "Read", FilePath: "install-foo.sh"}
	if d := g.Check(ev); d.Blocked {
		t.Error("reading an install script is not a modification")
	}
}
