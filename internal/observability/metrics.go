// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package observability exposes the Prometheus metrics of the location cycles.
package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pirayeshfar/location-finder/internal/resolution"
)

const namespace = "location_finder"

// Metrics holds the Prometheus counters, histograms and gauges of the location cycles.
type Metrics struct {
	CyclesTotal    *prometheus.CounterVec   // labels: outcome={resolved,failed}, kind
	StageDuration  *prometheus.HistogramVec // labels: stage={acquire,resolve}
	CycleDuration  prometheus.Histogram
	CacheLookups   *prometheus.CounterVec // labels: result={hit,miss}
	CycleRunning   prometheus.Gauge
	IllegalEvents  prometheus.Counter
	RejectedStarts prometheus.Counter
}

// NewMetrics creates all metrics and registers them with reg. A nil reg selects the default
// Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := newMetrics()
	reg.MustRegister(
		m.CyclesTotal,
		m.StageDuration,
		m.CycleDuration,
		m.CacheLookups,
		m.CycleRunning,
		m.IllegalEvents,
		m.RejectedStarts,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so that tests can create
// as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed location cycles by outcome and error kind.",
		}, []string{"outcome", "kind"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of the acquire and resolve stages.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete location cycle.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 180},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "address_cache_total",
			Help:      "Resolved addresses by cache result.",
		}, []string{"result"}),
		CycleRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_running",
			Help:      "1 while a location cycle is outstanding, 0 otherwise.",
		}),
		IllegalEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "illegal_events_total",
			Help:      "Events rejected by the state machine.",
		}),
		RejectedStarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_starts_total",
			Help:      "Start requests ignored because a cycle was outstanding.",
		}),
	}
}

// Observe records a state transition. It is meant to be subscribed to a resolution.Machine.
func (m *Metrics) Observe(from, to resolution.State) {
	switch st := to.(type) {
	case resolution.AcquiringCoordinates:
		m.CycleRunning.Set(1)
	case resolution.ResolvingAddress:
		m.StageDuration.WithLabelValues("acquire").Observe(st.LocatedAt.Sub(st.StartedAt).Seconds())
	case resolution.Resolved:
		m.CycleRunning.Set(0)
		m.StageDuration.WithLabelValues("resolve").Observe(st.ResolvedAt.Sub(st.LocatedAt).Seconds())
		m.CycleDuration.Observe(resolution.Duration(st).Seconds())
		m.CyclesTotal.WithLabelValues("resolved", "").Inc()
		result := "miss"
		if st.CacheHit {
			result = "hit"
		}
		m.CacheLookups.WithLabelValues(result).Inc()
	case resolution.Failed:
		m.CycleRunning.Set(0)
		stage, since := "acquire", st.StartedAt
		if resolving, ok := from.(resolution.ResolvingAddress); ok {
			stage, since = "resolve", resolving.LocatedAt
		}
		m.StageDuration.WithLabelValues(stage).Observe(st.FailedAt.Sub(since).Seconds())
		m.CycleDuration.Observe(resolution.Duration(st).Seconds())
		m.CyclesTotal.WithLabelValues("failed", st.Kind.String()).Inc()
	}
}

// Reject records an event the state machine did not accept.
func (m *Metrics) Reject(err error) {
	if errors.Is(err, resolution.ErrCycleInProgress) {
		m.RejectedStarts.Inc()
		return
	}
	m.IllegalEvents.Inc()
}
