package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/atikulmunna/edlog/internal/model"
)

const epsWindow = 5 * time.Second

// Stats holds a point-in-time snapshot of live ingest activity.
type Stats struct {
	Uptime         string           `json:"uptime"`
	TotalEvents    int64            `json:"total_events"`
	EPS            float64          `json:"eps"`
	EventCounts    map[string]int64 `json:"event_counts"`
	LastEventTime  *time.Time       `json:"last_event_time,omitempty"`
	Dropped        int64            `json:"dropped"`
	CurrentJournal string           `json:"current_journal"`
	Systems        int              `json:"systems"`
}

// Sources supplies live values owned by other components. Nil fields report
// zero values.
type Sources struct {
	Dropped func() int64
	Journal func() string
	Systems func() int
}

// Aggregator subscribes to the Hub and computes time-windowed counters.
type Aggregator struct {
	mu          sync.RWMutex
	startTime   time.Time
	totalEvents int64
	counts      map[string]int64
	lastEvent   time.Time
	window      []time.Time // arrival times within the last epsWindow
	src         Sources
	events      <-chan model.Event
}

// New creates an Aggregator that reads from the given Hub subscriber channel.
func New(events <-chan model.Event, src Sources) *Aggregator {
	return &Aggregator{
		startTime: time.Now(),
		counts:    make(map[string]int64),
		src:       src,
		events:    events,
	}
}

// Snapshot returns the current stats.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	counts := make(map[string]int64, len(a.counts))
	for k, v := range a.counts {
		counts[k] = v
	}

	cutoff := time.Now().Add(-epsWindow)
	var recent int
	for _, t := range a.window {
		if t.After(cutoff) {
			recent++
		}
	}

	st := Stats{
		Uptime:      time.Since(a.startTime).Truncate(time.Second).String(),
		TotalEvents: a.totalEvents,
		EPS:         float64(recent) / epsWindow.Seconds(),
		EventCounts: counts,
	}
	if !a.lastEvent.IsZero() {
		last := a.lastEvent
		st.LastEventTime = &last
	}
	if a.src.Dropped != nil {
		st.Dropped = a.src.Dropped()
	}
	if a.src.Journal != nil {
		st.CurrentJournal = a.src.Journal()
	}
	if a.src.Systems != nil {
		st.Systems = a.src.Systems()
	}
	return st
}

// Start consumes events until the context is cancelled or the channel closes.
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-a.events:
			if !ok {
				return
			}
			a.record(ev)
		case <-ticker.C:
			a.prune()
		}
	}
}

func (a *Aggregator) record(ev model.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalEvents++
	a.counts[eventName(ev)]++
	if ev.Time().After(a.lastEvent) {
		a.lastEvent = ev.Time()
	}
	a.window = append(a.window, time.Now())
}

// prune removes arrivals older than the EPS window.
func (a *Aggregator) prune() {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := time.Now().Add(-epsWindow)
	i := 0
	for _, t := range a.window {
		if t.After(cutoff) {
			a.window[i] = t
			i++
		}
	}
	a.window = a.window[:i]
}

// eventName keys counts by the literal event name so unknown kinds are
// still told apart.
func eventName(ev model.Event) string {
	if s, ok := ev.Document()["event"].(string); ok && s != "" {
		return s
	}
	return ev.Kind().JournalName()
}
