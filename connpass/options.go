package connpass

import (
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kroma-labs/connpass-go/httpclient"
)

const (
	// DefaultBaseURL is the connpass API v2 endpoint.
	DefaultBaseURL = "https://connpass.com/api/v2"

	defaultUserAgent = "connpass-go"

	// scope is the instrumentation scope name for OpenTelemetry.
	scope = "github.com/kroma-labs/connpass-go/connpass"
)

// clientConfig holds everything New needs; it is discarded after
// construction.
type clientConfig struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	transport  http.RoundTripper
	httpConfig httpclient.Config
	logger     zerolog.Logger
	debug      bool

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func newClientConfig(opts ...Option) *clientConfig {
	cfg := &clientConfig{
		baseURL:        DefaultBaseURL,
		userAgent:      defaultUserAgent,
		httpConfig:     httpclient.DefaultConfig(),
		logger:         zerolog.Nop(),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// buildHTTPClient returns the caller's client when one was given, and an
// instrumented one otherwise.
func (cfg *clientConfig) buildHTTPClient() *http.Client {
	if cfg.httpClient != nil {
		return cfg.httpClient
	}

	opts := []httpclient.Option{
		httpclient.WithConfig(cfg.httpConfig),
		httpclient.WithServiceName("connpass"),
		httpclient.WithTracerProvider(cfg.tracerProvider),
		httpclient.WithMeterProvider(cfg.meterProvider),
		httpclient.WithLogger(cfg.logger),
		httpclient.WithDebug(cfg.debug),
	}
	if cfg.transport != nil {
		opts = append(opts, httpclient.WithBaseTransport(cfg.transport))
	}
	return httpclient.New(opts...)
}

// Option configures a Client.
type Option func(*clientConfig)

// WithBaseURL overrides DefaultBaseURL, e.g. for a test server.
func WithBaseURL(baseURL string) Option {
	return func(cfg *clientConfig) {
		cfg.baseURL = baseURL
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) {
		cfg.userAgent = ua
	}
}

// WithHTTPClient uses hc as is. The transport options below are ignored
// and no transport-level instrumentation is added.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *clientConfig) {
		cfg.httpClient = hc
	}
}

// WithTransport sets the base round tripper. Tracing, metrics and debug
// logging still wrap it.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *clientConfig) {
		cfg.transport = rt
	}
}

// WithHTTPConfig sets timeouts and connection pooling.
func WithHTTPConfig(c httpclient.Config) Option {
	return func(cfg *clientConfig) {
		cfg.httpConfig = c
	}
}

// WithLogger sets the logger for operation and debug logs.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithDebug logs every request and response at debug level, with the API
// key masked.
func WithDebug(enabled bool) Option {
	return func(cfg *clientConfig) {
		cfg.debug = enabled
	}
}

// WithTracerProvider sets the TracerProvider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *clientConfig) {
		if tp != nil {
			cfg.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the MeterProvider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *clientConfig) {
		if mp != nil {
			cfg.meterProvider = mp
		}
	}
}
