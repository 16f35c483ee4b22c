// Package metrics exposes recent-apps query and observer activity to
// Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/actionsum/recentapps/pkg/recentapps"
)

const namespace = "recentapps"

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// One-shot queries
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Observer samples by outcome
	SamplesTotal *prometheus.CounterVec

	// Web stream
	WSConnections prometheus.Gauge
	HTTPRequests  *prometheus.CounterVec
}

// New creates the collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Recent-apps queries by strategy and result",
			},
			[]string{"strategy", "result"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Recent-apps query latency in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"strategy"},
		),
		SamplesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "observer_samples_total",
				Help:      "Observer sampling steps by outcome",
			},
			[]string{"observer", "outcome"},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Open watch streams",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP API requests by path and status",
			},
			[]string{"path", "status"},
		),
	}
}

// ObserveQuery records one provider call
func (m *Metrics) ObserveQuery(strategy string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.QueriesTotal.WithLabelValues(strategy, result).Inc()
	m.QueryDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// ObserveSample records one observer outcome
func (m *Metrics) ObserveSample(observer string, outcome recentapps.Outcome) {
	m.SamplesTotal.WithLabelValues(observer, string(outcome)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ recentapps.Recorder = (*Metrics)(nil)
