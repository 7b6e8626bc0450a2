package status

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/parser"
)

// Poller re-reads the snapshot file on demand and turns new frames into
// events. The file is rewritten whole by the game, so every call reads it in
// full.
type Poller struct {
	path   string
	parser parser.Parser

	// EveryFrame dispatches each frame with a new timestamp. By default a
	// frame is only dispatched when one of its flag words changed.
	EveryFrame bool

	mu     sync.Mutex
	seen   bool
	lastTS time.Time
	flags  uint32
	flags2 uint32
	edge   EdgeDetector
	last   *model.Status
}

func NewPoller(path string) *Poller {
	return &Poller{path: path, parser: parser.New()}
}

func (p *Poller) Path() string { return p.path }

// Poll reads the file once. It returns the events to dispatch: the frame
// itself when it qualifies, followed by a HyperjumpCharging event on a rising
// edge. A missing or empty file yields nothing.
func (p *Poller) Poll() ([]model.Event, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}

	ev, err := p.parser.Parse(text)
	if err != nil {
		return nil, err
	}
	st, ok := ev.(*model.Status)
	if !ok {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen && st.Time().Equal(p.lastTS) {
		return nil, nil
	}
	changed := !p.seen || st.Flags != p.flags || st.Flags2 != p.flags2
	p.seen = true
	p.lastTS = st.Time()
	p.flags, p.flags2 = st.Flags, st.Flags2
	p.last = st

	var out []model.Event
	if changed || p.EveryFrame {
		out = append(out, st)
	}
	if hj, ok := p.edge.Observe(st); ok {
		out = append(out, hj)
	}
	return out, nil
}

// Last returns the most recent frame read, or nil.
func (p *Poller) Last() *model.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
