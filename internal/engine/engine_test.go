package engine

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/avolkov/hookgate/internal/audit"
	"github.com/avolkov/hookgate/internal/config"
	"github.com/avolkov/hookgate/internal/event"
	"github.com/avolkov/hookgate/internal/override"
)

// newTestEngine builds an engine confined to a throwaway project root,
// returning the engine, the override store backing it, and the audit
// log path for inspection.
func newTestEngine(t *testing.T, cfg *config.Config) (*Engine, *override.Store, string) {
	t.Helper()
	dir := t.TempDir()
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.Root == "" {
		cfg.Root = filepath.Join(dir, "project")
	}
	auditPath := filepath.Join(dir, "audit.jsonl")
	overrideDir := filepath.Join(dir, "override")

	eng, err := New(Options{
		Config:      cfg,
		ConfigHash:  "sha256:test",
		AuditPath:   auditPath,
		OverrideDir: overrideDir,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })

	store, err := override.NewStore(overrideDir)
	if err != nil {
		t.Fatal(err)
	}
	return eng, store, auditPath
}

func bashEvent(root, command string) *event.Event {
	return &event.Event{
		ToolName:   "Bash",
		Command:    command,
		WorkingDir: root,
	}
}

func TestEscapeAttemptBlockedAndAudited(t *testing.T) {
	cfg := config.Default()
	eng, _, auditPath := newTestEngine(t, cfg)

	v := eng.Evaluate(bashEvent(cfg.Root, "cd ../outside-project"), "")
	if !v.Blocked {
		t.Fatal("cd out of the project root must block")
	}
	found := false
	for _, r := range v.Reasons {
		if strings.HasPrefix(r, "path-boundary:") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons = %v, want a path-boundary reason", v.Reasons)
	}

	records, err := audit.ReadAll(auditPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || !records[0].Blocked {
		t.Fatalf("audit records = %+v", records)
	}
	if records[0].ConfigHash != "sha256:test" {
		t.Errorf("config hash = %q", records[0].ConfigHash)
	}
}

func TestInstallScriptVariantBlockedSafeNameAllowed(t *testing.T) {
	cfg := config.Default()
	eng, _, _ := newTestEngine(t, cfg)

	write := func(name string) *event.Event {
		return &event.Event{
			ToolName:   "Write",
			FilePath:   filepath.Join(cfg.Root, name),
			NewContent: "#!/bin/sh\n",
			WorkingDir: cfg.Root,
		}
	}

	if v := eng.Evaluate(write("install-foo.sh"), ""); !v.Blocked {
		t.Error("install-foo.sh must block")
	}
	if v := eng.Evaluate(write("safe_install.sh"), ""); v.Blocked {
		t.Errorf("safe_install.sh must pass, got %v", v.Reasons)
	}
	if v := eng.Evaluate(write("install.sh"), ""); v.Blocked {
		t.Errorf("the entry point itself must pass, got %v", v.Reasons)
	}
}

func TestOverrideUnblocksAllGuardsAndConsumesOnce(t *testing.T) {
	cfg := config.Default()
	eng, store, auditPath := newTestEngine(t, cfg)

	code, err := store.Create("migrating hook layout", 10*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	// Trips both bypass-pattern and script-integrity with one command.
	ev := &event.Event{
		ToolName:   "Write",
		FilePath:   filepath.Join(cfg.Root, "verify.sh"),
		NewContent: "git commit --no-verify\n",
		WorkingDir: cfg.Root,
	}

	v := eng.Evaluate(ev, code.ID)
	if v.Blocked || !v.Overridden {
		t.Fatalf("verdict = %+v, want overridden", v)
	}
	if len(v.Reasons) < 2 {
		t.Errorf("reasons = %v, want every tripped guard reported", v.Reasons)
	}

	// The code is single-use: the same event blocks the second time.
	v = eng.Evaluate(ev, code.ID)
	if !v.Blocked || v.Overridden {
		t.Fatalf("second use verdict = %+v, want blocked", v)
	}

	records, err := audit.ReadAll(auditPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("audit records = %d, want 2", len(records))
	}
	if records[0].Decision() != "override" || records[0].OverrideID != code.ID {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Decision() != "block" {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestCleanEventDoesNotConsumeOverride(t *testing.T) {
	cfg := config.Default()
	eng, store, _ := newTestEngine(t, cfg)

	code, err := store.Create("just in case", 10*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	v := eng.Evaluate(bashEvent(cfg.Root, "ls -la"), code.ID)
	if v.Blocked || v.Overridden {
		t.Fatalf("verdict = %+v, want plain allow", v)
	}

	// The untouched code still works against a real block.
	v = eng.Evaluate(bashEvent(cfg.Root, "cd /etc"), code.ID)
	if v.Blocked || !v.Overridden {
		t.Fatalf("verdict = %+v, want overridden", v)
	}
}

func TestRedactCodeKeepsPrefixOnly(t *testing.T) {
	if got := redactCode("ov-0123456789abcdef"); got != "ov-012..." {
		t.Errorf("redactCode(long) = %q", got)
	}
	if got := redactCode("ov-1"); got != "ov-1" {
		t.Errorf("redactCode(short) = %q", got)
	}
}

func TestDisabledGuardSkipped(t *testing.T) {
	cfg := config.Default()
	cfg.DisabledGuards = []string{"bypass-pattern"}
	eng, _, _ := newTestEngine(t, cfg)

	v := eng.Evaluate(bashEvent(cfg.Root, "git commit --no-verify -m x"), "")
	if v.Blocked {
		t.Errorf("disabled guard must not block, reasons = %v", v.Reasons)
	}
}

func TestUnknownDisabledGuardFailsConstruction(t *testing.T) {
	cfg := config.Default()
	cfg.DisabledGuards = []string{"no-such-guard"}
	if _, err := BuildRegistry(cfg); err == nil {
		t.Fatal("unknown guard name in disabled_guards must fail loudly")
	}
}
