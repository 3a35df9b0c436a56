// Package verdict merges per-guard decisions and override status into
// the engine's final allow/block outcome.
package verdict

import "github.com/avolkov/hookgate/internal/guard"

// Verdict is the aggregation of all decisions for one event.
type Verdict struct {
	Blocked    bool             `json:"blocked"`
	Overridden bool             `json:"overridden"`
	Reasons    []string         `json:"reasons,omitempty"`
	Decisions  []guard.Decision `json:"decisions,omitempty"`
}

// Aggregate turns the decision list plus override status into a Verdict.
//
// A clean pass (no blocking decision) allows. One or more blocking
// decisions block unless a valid override was consumed, in which case
// the event is allowed with Overridden set. There is no priority among
// simultaneous blocks: all reasons are reported in decision order, and
// an override unblocks all of them at once. Override is event-scoped,
// not guard-scoped.
func Aggregate(decisions []guard.Decision, overridden bool) Verdict {
	v := Verdict{Decisions: decisions}

	for _, d := range decisions {
		if !d.Blocked {
			continue
		}
		reason := d.Reason
		if reason == "" {
			reason = "blocked"
		}
		v.Reasons = append(v.Reasons, d.Guard+": "+reason)
	}

	if len(v.Reasons) == 0 {
		return v
	}
	if overridden {
		v.Overridden = true
		return v
	}
	v.Blocked = true
	return v
}

// AnyBlocking reports whether at least one decision blocks. The engine
// uses this to decide whether an override code should be consumed at
// all: a clean event must not burn a code.
func AnyBlocking(decisions []guard.Decision) bool {
	for _, d := range decisions {
		if d.Blocked {
			return true
		}
	}
	return false
}
