package exporter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kroma-labs/connpass-go/httpserver"
)

// Endpoint paths served by Handler.
const (
	PathMetrics = "/metrics"
	PathLive    = "/livez"
	PathReady   = "/readyz"
)

// Handler serves the metrics in g and the health probes. Readiness follows
// e.Ready.
func Handler(g prometheus.Gatherer, e *Exporter, serviceName, version string) http.Handler {
	health := httpserver.NewHealthHandler(serviceName, version)
	health.AddReadinessCheck("collection", e.Ready)

	mux := http.NewServeMux()
	mux.Handle("GET "+PathMetrics, httpserver.PrometheusHandlerFor(g))
	mux.Handle("GET "+PathLive, health.LiveHandler())
	mux.Handle("GET "+PathReady, health.ReadyHandler())
	return mux
}
