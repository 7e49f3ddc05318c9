package httpserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusHandlerFor serves the metrics of g in the Prometheus text
// format. Collection errors are reported in the response, not as a 500,
// so one broken collector does not hide the rest.
//
//	mux.Handle("/metrics", httpserver.PrometheusHandlerFor(registry))
func PrometheusHandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
