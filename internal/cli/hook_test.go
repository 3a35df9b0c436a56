package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/avolkov/hookgate/internal/audit"
	"github.com/avolkov/hookgate/internal/override"
)

// withTestConfig points the package-level --config path at a YAML file
// whose audit log and override store live under a throwaway directory,
// and restores the old path when the test finishes.
func withTestConfig(t *testing.T) (root, auditPath, overrideDir string) {
	t.Helper()
	dir := t.TempDir()
	root = filepath.Join(dir, "project")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	auditPath = filepath.Join(dir, "audit.jsonl")
	overrideDir = filepath.Join(dir, "override")

	cfgPath := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("root: %s\naudit_log: %s\noverride_dir: %s\n",
		root, auditPath, overrideDir)
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	old := configPath
	configPath = cfgPath
	t.Cleanup(func() { configPath = old })
	return root, auditPath, overrideDir
}

func payload(tool, command, cwd string) string {
	return fmt.Sprintf(`{"tool_name":%q,"tool_input":{"command":%q},"cwd":%q}`,
		tool, command, cwd)
}

func TestRunHookAllows(t *testing.T) {
	root, auditPath, _ := withTestConfig(t)

	var stderr bytes.Buffer
	code := runHook(strings.NewReader(payload("Bash", "go test ./...", root)), &stderr, "")
	if code != ExitAllow {
		t.Fatalf("exit = %d, stderr = %q", code, stderr.String())
	}

	records, err := audit.ReadAll(auditPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Blocked {
		t.Fatalf("audit records = %+v", records)
	}
}

func TestRunHookBlocksWithReasonsOnStderr(t *testing.T) {
	root, _, _ := withTestConfig(t)

	var stderr bytes.Buffer
	code := runHook(strings.NewReader(payload("Bash", "cd ../outside-project", root)), &stderr, "")
	if code != ExitBlock {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stderr.String(), "BLOCKED: path-boundary:") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "HOOKGATE_OVERRIDE") {
		t.Errorf("stderr must mention the override channel, got %q", stderr.String())
	}
}

func TestRunHookMalformedPayload(t *testing.T) {
	withTestConfig(t)

	cases := []struct {
		name  string
		stdin string
	}{
		{"empty", ""},
		{"not json", "lorem ipsum"},
		{"missing tool", `{"tool_input":{"command":"ls"}}`},
		{"no actionable input", `{"tool_name":"Bash","tool_input":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := runHook(strings.NewReader(tc.stdin), &stderr, "")
			if code != ExitError {
				t.Errorf("exit = %d, want %d", code, ExitError)
			}
		})
	}
}

func TestRunHookOverrideAllows(t *testing.T) {
	root, auditPath, overrideDir := withTestConfig(t)

	store, err := override.NewStore(overrideDir)
	if err != nil {
		t.Fatal(err)
	}
	c, err := store.Create("approved cleanup", 10*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	blocked := payload("Bash", "cd /etc", root)

	var stderr bytes.Buffer
	code := runHook(strings.NewReader(blocked), &stderr, c.ID)
	if code != ExitAllow {
		t.Fatalf("exit = %d, stderr = %q", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "override") {
		t.Errorf("stderr = %q", stderr.String())
	}

	// Consumed: the same code no longer unblocks.
	stderr.Reset()
	code = runHook(strings.NewReader(blocked), &stderr, c.ID)
	if code != ExitBlock {
		t.Fatalf("second use exit = %d", code)
	}

	records, err := audit.ReadAll(auditPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("audit records = %d, want 2", len(records))
	}
	if records[0].Decision() != "override" || records[1].Decision() != "block" {
		t.Errorf("decisions = %q, %q", records[0].Decision(), records[1].Decision())
	}
}
