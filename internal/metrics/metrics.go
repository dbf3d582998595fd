// Package metrics exposes Prometheus counters for frames and rounds.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
)

// Metrics owns a private registry so several instances can coexist in tests.
// It implements game.Listener.
type Metrics struct {
	game.NopListener

	registry   *prometheus.Registry
	frames     *prometheus.CounterVec
	rounds     *prometheus.CounterVec
	aborted    prometheus.Counter
	countdowns prometheus.Counter
	handShown  prometheus.Gauge

	mu        sync.Mutex
	lastPhase game.Phase
}

// New registers all collectors plus the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "janken_frames_total",
			Help: "Classified landmark frames by gesture.",
		}, []string{"gesture"}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "janken_rounds_total",
			Help: "Revealed rounds by outcome.",
		}, []string{"outcome"}),
		aborted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "janken_rounds_aborted_total",
			Help: "Rounds abandoned because the hand or gesture was lost.",
		}),
		countdowns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "janken_countdowns_started_total",
			Help: "Countdowns started after a gesture locked in.",
		}),
		handShown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "janken_hand_visible",
			Help: "1 while a hand is in view.",
		}),
		lastPhase: game.PhaseIdle,
	}

	m.registry.MustRegister(
		m.frames,
		m.rounds,
		m.aborted,
		m.countdowns,
		m.handShown,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFrame counts one classified frame.
func (m *Metrics) ObserveFrame(g gesture.Gesture) {
	m.frames.WithLabelValues(g.String()).Inc()
}

func (m *Metrics) HandPresence(visible bool) {
	if visible {
		m.handShown.Set(1)
	} else {
		m.handShown.Set(0)
	}
}

func (m *Metrics) Status(s game.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.Phase == game.PhaseCountdown && m.lastPhase != game.PhaseCountdown {
		m.countdowns.Inc()
	}
	m.lastPhase = s.Phase
}

func (m *Metrics) Reveal(r game.Result) {
	m.rounds.WithLabelValues(string(r.Outcome)).Inc()
}

func (m *Metrics) Reset(reason game.ResetReason) {
	if reason == game.ResetAborted {
		m.aborted.Inc()
	}
}
