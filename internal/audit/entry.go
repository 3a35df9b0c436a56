package audit

import "github.com/avolkov/hookgate/internal/event"

// Record is one line in the hash-chained JSONL audit log.
// All fields are structs (no map[string]any) to guarantee deterministic
// json.Marshal field order for reproducible hashing.
type Record struct {
	Timestamp  string        `json:"ts"`
	ID         string        `json:"id"`
	Event      event.Summary `json:"event"`
	Blocked    bool          `json:"blocked"`
	Overridden bool          `json:"overridden"`
	Reasons    []string      `json:"reasons,omitempty"`
	OverrideID string        `json:"override_id,omitempty"`
	ConfigHash string        `json:"config_hash,omitempty"`
	PrevHash   string        `json:"prev_hash"`
}

// Decision returns the record's outcome as a word for display and
// indexing.
func (r *Record) Decision() string {
	switch {
	case r.Blocked:
		return "block"
	case r.Overridden:
		return "override"
	default:
		return "allow"
	}
}
