package httpclient

import (
	"net/http"
)

// New creates an *http.Client with OpenTelemetry instrumentation and
// optional debug logging wrapped around a pooled transport.
//
// The transport chain is, outermost first:
//
//	otelTransport -> debugTransport (when WithDebug) -> base transport
//
// Example:
//
//	client := httpclient.New(
//	    httpclient.WithServiceName("connpass"),
//	    httpclient.WithConfig(httpclient.LowLatencyConfig()),
//	)
func New(opts ...Option) *http.Client {
	cfg := newConfig(opts...)

	return &http.Client{
		Transport: cfg.chain(cfg.buildTransport()),
		Timeout:   cfg.httpConfig.Timeout,
	}
}

// NewTransport creates an instrumented http.RoundTripper around base.
// If base is nil, http.DefaultTransport is used.
//
// Example:
//
//	transport := httpclient.NewTransport(http.DefaultTransport,
//	    httpclient.WithServiceName("connpass"),
//	)
//	client := &http.Client{Transport: transport}
func NewTransport(base http.RoundTripper, opts ...Option) http.RoundTripper {
	cfg := newConfig(opts...)
	if base == nil {
		base = http.DefaultTransport
	}
	return cfg.chain(base)
}

// chain wraps base with the debug and tracing layers.
func (cfg *internalConfig) chain(base http.RoundTripper) http.RoundTripper {
	rt := base
	if cfg.Debug {
		rt = newDebugTransport(rt, cfg.Logger)
	}
	return newOtelTransport(rt, cfg)
}
