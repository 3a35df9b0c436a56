package audit

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/avolkov/hookgate/internal/event"
)

// A record can carry a command far beyond bufio.Scanner's default token
// limit. Every scan site must accept lines the writer itself produced:
// a valid log that Open rejects would turn every later evaluation into
// an input error.
func TestScanAcceptsLongCommandRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	long := strings.Repeat("x", 80*1024)
	if err := l.Append(Record{
		ID:      "long",
		Event:   event.Summary{Tool: "Bash", Command: long},
		Blocked: false,
	}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen must recover the chain tail from the oversized line.
	l2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen after long record: %v", err)
	}
	if err := l2.Append(Record{
		ID:    "after",
		Event: event.Summary{Tool: "Bash", Command: "ls"},
	}); err != nil {
		t.Fatal(err)
	}
	l2.Close()

	result := Verify(path)
	if !result.Valid {
		t.Fatalf("verify rejected a well-formed log: line %d: %s",
			result.ErrorLine, result.Error)
	}
	if result.Lines != 2 {
		t.Errorf("lines = %d, want 2", result.Lines)
	}

	records, err := ReadAll(path)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(records) != 2 || len(records[0].Event.Command) != len(long) {
		t.Errorf("records = %d, first command %d bytes",
			len(records), len(records[0].Event.Command))
	}
}
