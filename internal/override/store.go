// Package override issues and consumes the single-use codes that let a
// human bypass a blocked verdict for exactly one event.
package override

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultDuration is the default code validity period.
	DefaultDuration = 15 * time.Minute
	// MaxDuration is the maximum allowed code validity period.
	MaxDuration = 1 * time.Hour
)

// validID matches the ov-<hex> code shape and nothing that could
// traverse paths.
var validID = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Code is a single-use override credential.
type Code struct {
	ID        string     `json:"id"`
	Reason    string     `json:"reason"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the code can still bypass a block.
func (c *Code) Active() bool {
	if c.UsedAt != nil || c.RevokedAt != nil {
		return false
	}
	return time.Now().UTC().Before(c.ExpiresAt)
}

// Store manages override code files on disk. One evaluation process may
// race another for the same code: consumption is arbitrated by an
// exclusive marker file, so exactly one of N concurrent consumers wins.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a Store backed by the given directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("override: create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir returns the default override store directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hookgate-override")
	}
	return filepath.Join(home, ".hookgate", "override")
}

// Create issues a new code with a mandatory reason.
func (s *Store) Create(reason string, duration time.Duration) (*Code, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("override: reason is required")
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	if duration > MaxDuration {
		return nil, fmt.Errorf("override: duration %s exceeds maximum %s", duration, MaxDuration)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := generateID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	code := &Code{
		ID:        id,
		Reason:    reason,
		IssuedAt:  now,
		ExpiresAt: now.Add(duration),
	}

	if err := s.writeAtomic(s.path(id), code); err != nil {
		return nil, fmt.Errorf("override: write code: %w", err)
	}
	return code, nil
}

// ValidateAndConsume atomically checks and consumes a code. It returns
// true only if the code exists, is unexpired, unrevoked, and this caller
// is the one that consumed it. It never returns an error: any failure
// means the override is simply absent and the block stands.
func (s *Store) ValidateAndConsume(id string) bool {
	if id == "" || !validID.MatchString(id) || strings.Contains(id, "..") {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.read(id)
	if err != nil || !code.Active() {
		return false
	}

	// The .used marker is created with O_EXCL: under concurrent
	// consumption of the same code, exactly one process succeeds here.
	marker, err := os.OpenFile(s.usedPath(id), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return false
	}
	marker.Close()

	now := time.Now().UTC()
	code.UsedAt = &now
	if err := s.writeAtomic(s.path(id), code); err != nil {
		// Marker already claims the code; the stale JSON is cosmetic.
		return true
	}
	return true
}

// Revoke marks a code as revoked.
func (s *Store) Revoke(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("override: invalid code id %q", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.read(id)
	if err != nil {
		return fmt.Errorf("override: code %q not found: %w", id, err)
	}
	now := time.Now().UTC()
	code.RevokedAt = &now
	return s.writeAtomic(s.path(id), code)
}

// List returns all codes in the store.
func (s *Store) List() ([]Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var codes []Code
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		code, err := s.read(id)
		if err != nil {
			continue
		}
		codes = append(codes, *code)
	}
	return codes, nil
}

// Cleanup removes expired and consumed code files with their markers.
func (s *Store) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		code, err := s.read(id)
		if err != nil {
			continue
		}
		if code.UsedAt != nil || code.RevokedAt != nil || now.After(code.ExpiresAt) || s.consumed(id) {
			if err := os.Remove(s.path(id)); err != nil {
				errs = append(errs, err)
			}
			os.Remove(s.usedPath(id))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) consumed(id string) bool {
	_, err := os.Stat(s.usedPath(id))
	return err == nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) usedPath(id string) string {
	return filepath.Join(s.dir, id+".used")
}

func (s *Store) read(id string) (*Code, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}
	var code Code
	if err := json.Unmarshal(data, &code); err != nil {
		return nil, err
	}
	// The consumed marker trumps whatever the JSON says: it covers the
	// window where a racing consumer claimed the code but has not yet
	// rewritten the JSON.
	if code.UsedAt == nil && s.consumed(id) {
		now := time.Now().UTC()
		code.UsedAt = &now
	}
	return &code, nil
}

func (s *Store) writeAtomic(path string, code *Code) error {
	data, err := json.MarshalIndent(code, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func generateID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("override: generate id: %w", err)
	}
	return "ov-" + hex.EncodeToString(b), nil
}
