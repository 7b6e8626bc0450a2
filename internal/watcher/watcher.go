// Package watcher turns file system notifications in the journal directory
// into wake-ups for the tailer. The tailer still polls on its own cadence;
// notifications only shorten the wait.
package watcher

import (
	"context"
	"log"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Event represents a change to a watched file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher monitors one directory for changes to files matching its patterns.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	patterns []string
	Events   chan Event
}

// New watches dir. patterns are matched against base names, e.g.
// "Journal.*.log" or "Status.json".
func New(dir string, patterns ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	if err := fsw.Add(abs); err != nil {
		fsw.Close()
		return nil, err
	}

	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			log.Printf("warning: ignoring invalid pattern %q", p)
		}
	}

	return &Watcher{
		fsw:      fsw,
		dir:      abs,
		patterns: patterns,
		Events:   make(chan Event, 64),
	}, nil
}

// Start forwards matching events until ctx is cancelled. When the Events
// buffer is full the event is dropped; the receiver only needs to know that
// something changed.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.Matches(ev.Name) {
				continue
			}
			select {
			case w.Events <- Event{Path: ev.Name, Op: ev.Op}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Matches reports whether path's base name matches one of the patterns. With
// no patterns every file matches.
func (w *Watcher) Matches(path string) bool {
	if len(w.patterns) == 0 {
		return true
	}
	name := filepath.Base(path)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
