package guard

import (
	"fmt"

	"github.com/avolkov/hookgate/internal/event"
)

// Registry holds the ordered set of guards. Registration order is fixed
// at construction and defines reporting order; it never affects whether
// an event is blocked.
type Registry struct {
	guards   []Guard
	disabled map[string]bool
	names    map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		disabled: make(map[string]bool),
		names:    make(map[string]bool),
	}
}

// Register appends a guard. Duplicate names are a startup error.
func (r *Registry) Register(g Guard) error {
	name := g.Name()
	if name == "" {
		return fmt.Errorf("guard: cannot register guard with empty name")
	}
	if r.names[name] {
		return fmt.Errorf("guard: duplicate registration of %q", name)
	}
	r.names[name] = true
	r.guards = append(r.guards, g)
	return nil
}

// Disable marks a guard as administratively disabled. Unknown names are
// an error so a typo cannot silently leave a guard running.
func (r *Registry) Disable(name string) error {
	if !r.names[name] {
		return fmt.Errorf("guard: cannot disable unknown guard %q", name)
	}
	r.disabled[name] = true
	return nil
}

// Enabled reports whether the named guard will run.
func (r *Registry) Enabled(name string) bool {
	return r.names[name] && !r.disabled[name]
}

// Names returns all registered guard names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.guards))
	for _, g := range r.guards {
		out = append(out, g.Name())
	}
	return out
}

// Evaluate runs every enabled guard over the event and collects all
// decisions. There is no short-circuit: a multi-violation event must
// surface every reason.
func (r *Registry) Evaluate(ev *event.Event) []Decision {
	decisions := make([]Decision, 0, len(r.guards))
	for _, g := range r.guards {
		if r.disabled[g.Name()] {
			continue
		}
		decisions = append(decisions, runOne(g, ev))
	}
	return decisions
}

// runOne invokes a single guard, converting a panic into a blocking
// decision. An uncaught guard failure must never read as "no objection".
func runOne(g Guard, ev *event.Event) (d Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			d = Decision{
				Guard:    g.Name(),
				Blocked:  true,
				Severity: SeverityBlock,
				Reason:   fmt.Sprintf("guard internal error: %v", rec),
			}
		}
	}()
	return g.Check(ev)
}
