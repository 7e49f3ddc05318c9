package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "connpass"

// Result label values besides the error kinds.
const (
	resultSuccess     = "success"
	resultCircuitOpen = "circuit_open"
	resultCanceled    = "canceled"
)

// metrics are the per-query collectors of the exporter.
type metrics struct {
	available    *prometheus.GaugeVec
	upcoming     *prometheus.GaugeVec
	collections  *prometheus.CounterVec
	lastSuccess  *prometheus.GaugeVec
	duration     *prometheus.HistogramVec
	breakerState *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		available: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_available",
			Help:      "Events matching the query, as reported by results_available.",
		}, []string{"query"}),
		upcoming: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_upcoming",
			Help:      "Events in the returned page that start in the future and are not cancelled.",
		}, []string{"query"}),
		collections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_total",
			Help:      "Query runs by result: success or the error kind of the final attempt.",
		}, []string{"query", "result"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run of the query.",
		}, []string{"query"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collection_duration_seconds",
			Help:      "Duration of a query run, retries included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"query"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state of the query: 0 closed, 1 half-open, 2 open.",
		}, []string{"query"}),
	}

	for _, c := range []prometheus.Collector{
		m.available, m.upcoming, m.collections, m.lastSuccess, m.duration, m.breakerState,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}
