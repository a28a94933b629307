package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "safarifame"

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	FeedFetches    *prometheus.CounterVec
	EventsLoaded   prometheus.Gauge
	BlocksSkipped  *prometheus.CounterVec
	RefreshSeconds prometheus.Histogram
	LastSuccessTS  prometheus.Gauge
	JoinRequests   *prometheus.CounterVec
}

// New builds a Metrics with its own registry so tests and multiple
// servers in one process do not collide on the global one.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.FeedFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_fetches_total",
		Help:      "Calendar feed fetch attempts by result (fresh, cached, error kind)",
	}, []string{"result"})
	m.EventsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fight_events",
		Help:      "Fight events extracted from the last successful refresh",
	})
	m.BlocksSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_blocks_skipped_total",
		Help:      "VEVENT blocks dropped during extraction by reason",
	}, []string{"reason"})
	m.RefreshSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_refresh_duration_seconds",
		Help:      "Time spent fetching and extracting the calendar feed",
		Buckets:   prometheus.DefBuckets,
	})
	m.LastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_last_success_timestamp_seconds",
		Help:      "Unix time of the last successful feed refresh",
	})
	m.JoinRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "join_requests_total",
		Help:      "Join request lifecycle transitions (submitted, approved, denied)",
	}, []string{"action"})

	m.registry.MustRegister(
		m.FeedFetches,
		m.EventsLoaded,
		m.BlocksSkipped,
		m.RefreshSeconds,
		m.LastSuccessTS,
		m.JoinRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, e.g. for testutil.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
