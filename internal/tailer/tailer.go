// Package tailer follows the newest journal file and the snapshot file and
// pushes parsed events to listeners.
package tailer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/atikulmunna/edlog/internal/catalog"
	"github.com/atikulmunna/edlog/internal/cursor"
	"github.com/atikulmunna/edlog/internal/journal"
	"github.com/atikulmunna/edlog/internal/metrics"
	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/parser"
	"github.com/atikulmunna/edlog/internal/status"
)

// DefaultInterval is the poll cadence.
const DefaultInterval = 500 * time.Millisecond

// Listener receives events on the tailer's goroutine.
type Listener interface {
	OnEvent(ev model.Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev model.Event)

func (f ListenerFunc) OnEvent(ev model.Event) { f(ev) }

// Tailer polls one journal directory.
type Tailer struct {
	dir       string
	catalog   *catalog.Catalog
	snapshot  *status.Poller
	parser    parser.Parser
	cursor    *cursor.Store
	interval  time.Duration
	autoStart bool
	logger    *log.Logger
	metrics   *metrics.Metrics

	mu        sync.Mutex
	listeners []Listener
	running   bool
	stop      chan struct{}
	done      chan struct{}
	wake      chan struct{}

	// Poll state. Only the polling goroutine (or a direct Poll caller)
	// touches these, under pollMu.
	pollMu  sync.Mutex
	current string
	offset  int64
}

type Option func(*Tailer)

func WithInterval(d time.Duration) Option {
	return func(t *Tailer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithStatusFile overrides the snapshot path. An empty path disables
// snapshot polling.
func WithStatusFile(path string) Option {
	return func(t *Tailer) {
		if path == "" {
			t.snapshot = nil
			return
		}
		t.snapshot = status.NewPoller(path)
	}
}

// WithCursor advances the store to the newest journal event after each poll.
func WithCursor(c *cursor.Store) Option {
	return func(t *Tailer) { t.cursor = c }
}

func WithStrictOrder(strict bool) Option {
	return func(t *Tailer) { t.catalog.StrictOrder = strict }
}

func WithLogger(l *log.Logger) Option {
	return func(t *Tailer) { t.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tailer) { t.metrics = m }
}

// WithoutAutoStart keeps AddListener from starting the polling goroutine.
// Callers drive the tailer with Poll or Start.
func WithoutAutoStart() Option {
	return func(t *Tailer) { t.autoStart = false }
}

// New creates a Tailer for dir. It fails with journal.ErrDirectoryNotFound
// when dir does not exist.
func New(dir string, opts ...Option) (*Tailer, error) {
	if err := journal.CheckDir(dir); err != nil {
		return nil, err
	}

	t := &Tailer{
		dir:       dir,
		catalog:   catalog.New(dir),
		snapshot:  status.NewPoller(filepath.Join(dir, journal.StatusFileName)),
		parser:    parser.New(),
		interval:  DefaultInterval,
		autoStart: true,
		logger:    log.Default(),
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Tailer) Dir() string { return t.dir }

// AddListener registers l and starts polling if it has not started yet.
// It is safe to call from any goroutine.
func (t *Tailer) AddListener(l Listener) {
	t.mu.Lock()
	t.listeners = append(t.listeners, l)
	start := t.autoStart && !t.running
	t.mu.Unlock()

	if start {
		t.Start()
	}
}

// Start launches the polling goroutine. Calling it again is a no-op.
func (t *Tailer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.stop, t.done)
}

// Stop asks the polling goroutine to exit after its current tick and waits
// for it.
func (t *Tailer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	stop, done := t.stop, t.done
	t.mu.Unlock()

	close(stop)
	<-done
}

// Nudge asks for an early poll. It never blocks.
func (t *Tailer) Nudge() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// CurrentFile returns the journal file being tailed, or "".
func (t *Tailer) CurrentFile() string {
	t.pollMu.Lock()
	defer t.pollMu.Unlock()
	return t.current
}

// Offset returns the byte offset reached in the current file.
func (t *Tailer) Offset() int64 {
	t.pollMu.Lock()
	defer t.pollMu.Unlock()
	return t.offset
}

// LastStatus returns the newest snapshot frame seen, or nil.
func (t *Tailer) LastStatus() *model.Status {
	if t.snapshot == nil {
		return nil
	}
	return t.snapshot.Last()
}

func (t *Tailer) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		if err := t.Poll(); err != nil {
			t.logger.Printf("poll %s: %v", t.dir, err)
			t.metrics.PollError()
		}
		t.metrics.PollDuration(time.Since(start))

		select {
		case <-stop:
			return
		case <-ticker.C:
		case <-t.wake:
		}
	}
}

// Poll runs one tick: it reads lines appended to the newest journal file
// since the last tick, then checks the snapshot file. Errors are returned
// for the caller to log; the next tick retries.
func (t *Tailer) Poll() error {
	t.pollMu.Lock()
	defer t.pollMu.Unlock()

	var errs []error
	if err := t.pollJournal(); err != nil {
		errs = append(errs, err)
	}
	if err := t.pollSnapshot(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (t *Tailer) pollJournal() error {
	latest, ok, err := t.catalog.Latest()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if latest.Path != t.current {
		if t.current != "" {
			// Pick up whatever the old file gained before the switch.
			newest, err := t.readAppended()
			if err != nil {
				t.logger.Printf("draining %s: %v", filepath.Base(t.current), err)
			}
			t.advanceCursor(newest)
			t.metrics.Rotation()
			t.logger.Printf("journal rotated to %s", latest.Name)
		}

		info, err := os.Stat(latest.Path)
		if err != nil {
			return err
		}
		t.current = latest.Path
		t.offset = info.Size()
		return nil
	}

	newest, err := t.readAppended()
	t.advanceCursor(newest)
	return err
}

func (t *Tailer) advanceCursor(newest time.Time) {
	if t.cursor == nil || newest.IsZero() {
		return
	}
	if _, err := t.cursor.Advance(newest); err != nil {
		t.logger.Printf("cursor: %v", err)
	}
}

// readAppended dispatches the complete lines written to the current file
// since offset and moves offset past them. A trailing line without its
// newline is left for the next tick. It returns the newest event time.
func (t *Tailer) readAppended() (time.Time, error) {
	var newest time.Time

	f, err := os.Open(t.current)
	if err != nil {
		return newest, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return newest, err
	}
	size := info.Size()
	if size < t.offset {
		t.logger.Printf("%s shrank from %d to %d bytes, rereading", filepath.Base(t.current), t.offset, size)
		t.offset = 0
	}
	if size == t.offset {
		return newest, nil
	}

	buf := make([]byte, size-t.offset)
	if _, err := f.ReadAt(buf, t.offset); err != nil && err != io.EOF {
		return newest, fmt.Errorf("reading %s: %w", filepath.Base(t.current), err)
	}

	end := bytes.LastIndexByte(buf, '\n')
	if end < 0 {
		return newest, nil
	}
	complete := buf[:end+1]

	for _, line := range bytes.Split(complete[:end], []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		ev, err := t.parser.Parse(string(line))
		if err != nil {
			t.logger.Printf("skipping line in %s: %v", filepath.Base(t.current), err)
			t.metrics.Malformed(metrics.SourceLive)
			continue
		}
		t.metrics.Event(metrics.SourceLive, ev.Kind().String())
		t.dispatch(ev)
		if ev.Time().After(newest) {
			newest = ev.Time()
		}
	}

	// Advance even past unparsable lines so they are not retried forever.
	t.offset += int64(len(complete))
	return newest, nil
}

func (t *Tailer) pollSnapshot() error {
	if t.snapshot == nil {
		return nil
	}
	events, err := t.snapshot.Poll()
	if err != nil {
		var mre *parser.MalformedRecordError
		if errors.As(err, &mre) {
			t.metrics.Malformed(metrics.SourceSnapshot)
		}
		return fmt.Errorf("snapshot: %w", err)
	}
	for _, ev := range events {
		t.metrics.Event(metrics.SourceSnapshot, ev.Kind().String())
		t.dispatch(ev)
	}
	return nil
}

// dispatch delivers ev to every listener. A panicking listener is logged
// and skipped; the others still receive the event.
func (t *Tailer) dispatch(ev model.Event) {
	t.mu.Lock()
	listeners := make([]Listener, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	for _, l := range listeners {
		t.deliver(l, ev)
	}
}

func (t *Tailer) deliver(l Listener, ev model.Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Printf("listener panicked on %s: %v", ev.Kind(), r)
			t.metrics.ListenerPanic()
		}
	}()
	l.OnEvent(ev)
}
