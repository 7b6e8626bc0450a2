// Package metrics exposes Prometheus counters for the ingest pipeline.
//
// All methods are safe to call on a nil *Metrics, so components can take an
// optional collector without guarding every call site.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Event sources.
const (
	SourceHistory  = "history"
	SourceLive     = "live"
	SourceSnapshot = "snapshot"
)

type Metrics struct {
	registry *prometheus.Registry

	events         *prometheus.CounterVec
	malformed      *prometheus.CounterVec
	pollErrors     prometheus.Counter
	pollDuration   prometheus.Summary
	listenerPanics prometheus.Counter
	gaps           prometheus.Counter
	systems        prometheus.Gauge
	rotations      prometheus.Counter
}

// New creates a collector set on its own registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edlog",
		Name:      "events_total",
		Help:      "Parsed journal events by source and kind",
	}, []string{"source", "kind"})
	m.malformed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edlog",
		Name:      "malformed_lines_total",
		Help:      "Lines skipped because they could not be parsed",
	}, []string{"source"})
	m.pollErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edlog",
		Name:      "poll_errors_total",
		Help:      "Tailer poll ticks that hit an I/O error",
	})
	m.pollDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "edlog",
		Name:      "poll_duration_seconds",
		Help:      "Time spent in one tailer poll tick",
	})
	m.listenerPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edlog",
		Name:      "listener_panics_total",
		Help:      "Listener callbacks that panicked during dispatch",
	})
	m.gaps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edlog",
		Name:      "synthetic_bodies_total",
		Help:      "Body records synthesized because an event carried no body id",
	})
	m.systems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edlog",
		Name:      "systems_tracked",
		Help:      "Systems currently held by the live accumulator",
	})
	m.rotations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edlog",
		Name:      "journal_rotations_total",
		Help:      "Times the tailer switched to a newer journal file",
	})

	m.registry.MustRegister(
		m.events, m.malformed, m.pollErrors, m.pollDuration,
		m.listenerPanics, m.gaps, m.systems, m.rotations,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Event(source, kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(source, kind).Inc()
}

func (m *Metrics) Malformed(source string) {
	if m == nil {
		return
	}
	m.malformed.WithLabelValues(source).Inc()
}

func (m *Metrics) PollError() {
	if m == nil {
		return
	}
	m.pollErrors.Inc()
}

func (m *Metrics) PollDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.pollDuration.Observe(d.Seconds())
}

func (m *Metrics) ListenerPanic() {
	if m == nil {
		return
	}
	m.listenerPanics.Inc()
}

func (m *Metrics) SyntheticBody() {
	if m == nil {
		return
	}
	m.gaps.Inc()
}

func (m *Metrics) Rotation() {
	if m == nil {
		return
	}
	m.rotations.Inc()
}

func (m *Metrics) SetSystems(n int) {
	if m == nil {
		return
	}
	m.systems.Set(float64(n))
}
