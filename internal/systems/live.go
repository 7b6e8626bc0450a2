package systems

import (
	"sync"

	"github.com/atikulmunna/edlog/internal/model"
)

// Live holds the latest State for concurrent readers while a single writer
// folds live events into it. It satisfies tailer.Listener.
type Live struct {
	mu       sync.RWMutex
	state    *State
	folder   Folder
	onChange func(*State)
}

// NewLive starts from initial, which may be nil.
func NewLive(initial *State, f Folder) *Live {
	if initial == nil {
		initial = Empty()
	}
	return &Live{state: initial, folder: f}
}

// OnChange registers fn to run after each fold that changed the State. It
// runs on the folding goroutine.
func (l *Live) OnChange(fn func(*State)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// OnEvent folds ev into the held State.
func (l *Live) OnEvent(ev model.Event) {
	l.mu.Lock()
	prev := l.state
	next := l.folder.Fold(prev, ev)
	l.state = next
	fn := l.onChange
	l.mu.Unlock()

	if fn != nil && next != prev {
		fn(next)
	}
}

// State returns the current snapshot. It stays valid after later folds.
func (l *Live) State() *State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}
