// Package guard implements the safety checks evaluated against each
// intercepted action, and the registry that runs them.
package guard

import "github.com/avolkov/hookgate/internal/event"

// Severity grades a decision.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

// Decision is the outcome of one guard's check over one event.
type Decision struct {
	Guard      string   `json:"guard"`
	Blocked    bool     `json:"blocked"`
	Severity   Severity `json:"severity"`
	Reason     string   `json:"reason,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Guard is a single safety check. Implementations are stateless with
// respect to one event and must not depend on other guards' results.
type Guard interface {
	// Name returns the guard's unique registry key.
	Name() string

	// Check evaluates the event. Implementations should not panic; the
	// registry converts panics into blocking decisions regardless.
	Check(ev *event.Event) Decision
}

// allow is the shared non-blocking decision for a guard.
func allow(name string) Decision {
	return Decision{Guard: name, Severity: SeverityInfo}
}

// block builds a blocking decision.
func block(name, reason, suggestion string) Decision {
	return Decision{
		Guard:      name,
		Blocked:    true,
		Severity:   SeverityBlock,
		Reason:     reason,
		Suggestion: suggestion,
	}
}
