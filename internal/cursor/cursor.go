// Package cursor persists the timestamp of the last processed journal event.
//
// The file holds a single ISO-8601 instant. The historical rescan and the
// live tailer share it so neither reprocesses what the other has seen.
package cursor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultFileName is the cursor file created inside the journal directory.
const DefaultFileName = "edlog.lastRescanTimestamp"

// Store reads and writes the cursor file. Calls on one Store are serialized;
// separate processes sharing a file are not coordinated.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store backed by path. The file need not exist.
func New(path string) *Store {
	return &Store{path: path}
}

// InDir returns a Store for the default cursor file inside dir.
func InDir(dir string) *Store {
	return New(filepath.Join(dir, DefaultFileName))
}

func (s *Store) Path() string { return s.path }

// Read returns the stored instant. A missing or unparsable file yields
// ok == false and no error: the caller replays from the beginning.
func (s *Store) Read() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() (time.Time, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return time.Time{}, false
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Write stores t unconditionally.
func (s *Store) Write(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(t)
}

// Advance stores t only if it is later than the stored instant. It reports
// whether the file changed.
func (s *Store) Advance(t time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.read(); ok && !t.After(cur) {
		return false, nil
	}
	if err := s.write(t); err != nil {
		return false, err
	}
	return true, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *Store) write(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("refusing to write zero cursor to %s", s.path)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(t.UTC().Format(time.RFC3339Nano)), 0644); err != nil {
		return fmt.Errorf("writing cursor: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("writing cursor: %w", err)
	}
	return nil
}
