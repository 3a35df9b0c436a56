package guard

import (
	"github.com/avolkov/hookgate/internal/event"
	"github.com/avolkov/hookgate/internal/pattern"
)

// ScriptIntegrityName is the registry key of the script-integrity guard.
const ScriptIntegrityName = "script-integrity"

// ScriptIntegrity blocks edits to designated protected test and
// verification files. A block from this guard stands unless the event
// carries a valid override code.
type ScriptIntegrity struct {
	protected *pattern.Set
}

// NewScriptIntegrity creates the guard from configured protected-file
// patterns (literal names, globs, or /regex/ forms, matched against
// whole path segments).
func NewScriptIntegrity(protected []string) *ScriptIntegrity {
	return &ScriptIntegrity{protected: pattern.NewSet(protected...)}
}

func (g *ScriptIntegrity) Name() string { return ScriptIntegrityName }

func (g *ScriptIntegrity) Check(ev *event.Event) Decision {
	if ev.FilePath == "" || !isWriteTool(ev.ToolName) {
		return allow(ScriptIntegrityName)
	}
	if p := g.protected.MatchAnyPathComponent(ev.FilePath); p != nil {
		return block(ScriptIntegrityName,
			"protected file: "+ev.FilePath+" (matched "+p.String()+")",
			"request an override code if this change is intentional")
	}
	return allow(ScriptIntegrityName)
}
