package guard

import (
	"github.com/avolkov/hookgate/internal/event"
	"github.com/avolkov/hookgate/internal/pattern"
)

// BypassPatternName is the registry key of the bypass-pattern guard.
const BypassPatternName = "bypass-pattern"

// defaultBypassPatterns are indicators that a command or edit attempts
// to disable, skip, or weaken another check: hook-skipping flags,
// test-skip markers, and the engine's own disable switches.
var defaultBypassPatterns = []string{
	"--no-verify",
	"--no-gpg-sign",
	"-short -run xxx",
	"t.Skip(",
	"SKIP_TESTS",
	"HOOKGATE_DISABLE",
	"HOOKGATE_OVERRIDE=",
	`/rm\s+(-\w+\s+)*\S*\.git/hooks/`,
	"core.hooksPath=/dev/null",
}

// BypassPattern blocks attempts to disable or weaken the guard pipeline
// itself, in either the command text or the content being written.
type BypassPattern struct {
	patterns *pattern.Set
}

// NewBypassPattern creates the guard with the default indicators plus
// any extra configured pattern strings.
func NewBypassPattern(extra []string) *BypassPattern {
	raw := append(append([]string{}, defaultBypassPatterns...), extra...)
	return &BypassPattern{patterns: pattern.NewSet(raw...)}
}

func (g *BypassPattern) Name() string { return BypassPatternName }

func (g *BypassPattern) Check(ev *event.Event) Decision {
	for _, text := range []string{ev.Command, ev.NewContent} {
		if text == "" {
			continue
		}
		if p := g.patterns.MatchAny(text); p != nil {
			return block(BypassPatternName,
				"attempt to bypass a safety check: matched "+p.String(),
				"run the checks instead of disabling them")
		}
	}
	return allow(BypassPatternName)
}
