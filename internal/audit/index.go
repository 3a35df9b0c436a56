package audit

import (
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

// Index is a SQLite mirror of the JSONL log used for trend analysis.
// It lives entirely on the read side: evaluations append to the JSONL
// log only and never touch the index.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (or creates) the index database at path. Use ":memory:"
// for throwaway analysis.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open index: %w", err)
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: create index schema: %w", err)
	}
	return &Index{db: db}, nil
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	ts          TEXT NOT NULL,
	tool        TEXT NOT NULL,
	command     TEXT,
	file_path   TEXT,
	decision    TEXT NOT NULL,
	overridden  INTEGER NOT NULL,
	guard       TEXT,
	reason      TEXT
);
CREATE INDEX IF NOT EXISTS idx_records_guard ON records(guard);
CREATE INDEX IF NOT EXISTS idx_records_decision ON records(decision);
`

// Load ingests every record from a JSONL log, replacing rows with the
// same id so re-running against a grown log is idempotent.
func (ix *Index) Load(logPath string) (int, error) {
	records, err := ReadAll(logPath)
	if err != nil {
		return 0, err
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("audit: begin index load: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO records
		(id, ts, tool, command, file_path, decision, overridden, guard, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("audit: prepare index insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		guard, reason := firstReason(rec)
		overridden := 0
		if rec.Overridden {
			overridden = 1
		}
		if _, err := stmt.Exec(rec.ID, rec.Timestamp, rec.Event.Tool, rec.Event.Command,
			rec.Event.FilePath, rec.Decision(), overridden, guard, reason); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("audit: index record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("audit: commit index load: %w", err)
	}
	return len(records), nil
}

// firstReason splits "guard: reason" from the first reported reason.
func firstReason(rec Record) (guard, reason string) {
	if len(rec.Reasons) == 0 {
		return "", ""
	}
	r := rec.Reasons[0]
	for i := 0; i < len(r); i++ {
		if r[i] == ':' {
			return r[:i], trimLeadingSpace(r[i+1:])
		}
	}
	return "", r
}

func trimLeadingSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}

// GuardCount is the number of blocks attributed to one guard.
type GuardCount struct {
	Guard string `json:"guard"`
	Count int    `json:"count"`
}

// Stats summarizes the indexed log for repeated-violation analysis.
type Stats struct {
	Total         int          `json:"total"`
	Allowed       int          `json:"allowed"`
	Blocked       int          `json:"blocked"`
	Overridden    int          `json:"overridden"`
	BlocksByGuard []GuardCount `json:"blocks_by_guard,omitempty"`
	RepeatTools   []GuardCount `json:"repeat_tools,omitempty"`
}

// Stats computes decision totals, per-guard block counts, and tools with
// repeated blocks (the repeated-violation trend the analyzer looks for).
func (ix *Index) Stats() (*Stats, error) {
	st := &Stats{}

	row := ix.db.QueryRow(`SELECT
		COUNT(*),
		SUM(CASE WHEN decision = 'allow' THEN 1 ELSE 0 END),
		SUM(CASE WHEN decision = 'block' THEN 1 ELSE 0 END),
		SUM(overridden)
		FROM records`)
	var allowed, blocked, overridden sql.NullInt64
	if err := row.Scan(&st.Total, &allowed, &blocked, &overridden); err != nil {
		return nil, fmt.Errorf("audit: stats totals: %w", err)
	}
	st.Allowed = int(allowed.Int64)
	st.Blocked = int(blocked.Int64)
	st.Overridden = int(overridden.Int64)

	byGuard, err := ix.countBy(`SELECT guard, COUNT(*) FROM records
		WHERE decision = 'block' AND guard != '' GROUP BY guard`)
	if err != nil {
		return nil, err
	}
	st.BlocksByGuard = byGuard

	repeats, err := ix.countBy(`SELECT tool, COUNT(*) FROM records
		WHERE decision = 'block' GROUP BY tool HAVING COUNT(*) >= 2`)
	if err != nil {
		return nil, err
	}
	st.RepeatTools = repeats

	return st, nil
}

func (ix *Index) countBy(query string) ([]GuardCount, error) {
	rows, err := ix.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("audit: stats query: %w", err)
	}
	defer rows.Close()

	var out []GuardCount
	for rows.Next() {
		var gc GuardCount
		if err := rows.Scan(&gc.Guard, &gc.Count); err != nil {
			return nil, fmt.Errorf("audit: stats scan: %w", err)
		}
		out = append(out, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Guard < out[j].Guard
	})
	return out, nil
}

// Close releases the database handle.
func (ix *Index) Close() error { return ix.db.Close() }
