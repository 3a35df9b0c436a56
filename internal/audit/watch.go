package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pollInterval is the fallback cadence when fsnotify delivers nothing.
// Append-heavy NFS mounts sometimes drop write events.
const pollInterval = 2 * time.Second

// Watch follows a JSONL audit log and invokes fn for every record
// appended after the call. It blocks until ctx is cancelled. Partial
// trailing lines (a writer mid-append) are left in the file until the
// newline arrives.
func Watch(ctx context.Context, path string, fn func(Record)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("audit: open log for watch: %w", err)
	}
	defer f.Close()

	// Start at the end: Watch reports new records only.
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("audit: seek log: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("audit: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors and rotation replace
	// the inode, and directory watches survive that.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("audit: watch log directory: %w", err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	drain := func() {
		offset = drainNewLines(f, offset, fn)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name == path && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				drain()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "audit: watch error: %v\n", err)
		case <-ticker.C:
			drain()
		}
	}
}

// drainNewLines reads complete lines starting at offset and returns the
// new offset. Unparseable lines are skipped rather than aborting the
// watch; verify surfaces them.
func drainNewLines(f *os.File, offset int64, fn func(Record)) int64 {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			// Incomplete trailing line: re-read it next round.
			return offset
		}
		offset += int64(len(line))

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		fn(rec)
	}
}
