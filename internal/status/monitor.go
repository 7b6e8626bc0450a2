package status

import (
	"context"
	"log"
	"time"

	"github.com/atikulmunna/edlog/internal/model"
)

// Monitor polls the snapshot file on its own, without a journal tailer, and
// hands every new frame to a handler.
type Monitor struct {
	poller   *Poller
	interval time.Duration
	handle   func(model.Event)
	logger   *log.Logger
}

// NewMonitor watches path every interval. handle runs on the monitor's
// goroutine.
func NewMonitor(path string, interval time.Duration, handle func(model.Event)) *Monitor {
	p := NewPoller(path)
	p.EveryFrame = true
	return &Monitor{
		poller:   p,
		interval: interval,
		handle:   handle,
		logger:   log.Default(),
	}
}

func (m *Monitor) SetLogger(l *log.Logger) { m.logger = l }

// Run polls until ctx is cancelled. Read and parse errors are logged and the
// next tick tries again.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *Monitor) tick() {
	events, err := m.poller.Poll()
	if err != nil {
		m.logger.Printf("snapshot read failed: %v", err)
		return
	}
	for _, ev := range events {
		m.dispatch(ev)
	}
}

func (m *Monitor) dispatch(ev model.Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Printf("snapshot handler panicked: %v", r)
		}
	}()
	m.handle(ev)
}
