package tailer

import (
	"path/filepath"
	"sync"
)

// Registry hands out one Tailer per journal directory so that callers
// interested in the same directory share a single polling goroutine.
type Registry struct {
	mu      sync.Mutex
	opts    []Option
	tailers map[string]*Tailer
}

// NewRegistry creates a Registry; opts apply to every Tailer it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:    opts,
		tailers: make(map[string]*Tailer),
	}
}

// Get returns the Tailer for dir, creating it on first use.
func (r *Registry) Get(dir string, extra ...Option) (*Tailer, error) {
	key := dirKey(dir)

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tailers[key]; ok {
		return t, nil
	}

	opts := append(append([]Option{}, r.opts...), extra...)
	t, err := New(dir, opts...)
	if err != nil {
		return nil, err
	}
	r.tailers[key] = t
	return t, nil
}

// Len returns the number of tailers created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tailers)
}

// StopAll stops every tailer and forgets them.
func (r *Registry) StopAll() {
	r.mu.Lock()
	tailers := r.tailers
	r.tailers = make(map[string]*Tailer)
	r.mu.Unlock()

	for _, t := range tailers {
		t.Stop()
	}
}

func dirKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
