package httpclient

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 20, cfg.MaxIdleConns)
	assert.Equal(t, 20, cfg.MaxIdleConnsPerHost)
	assert.Equal(t, 90*time.Second, cfg.IdleConnTimeout)
	assert.Equal(t, 10*time.Second, cfg.TLSHandshakeTimeout)
	assert.Equal(t, time.Duration(0), cfg.ResponseHeaderTimeout)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 30*time.Second, cfg.KeepAlive)
	assert.False(t, cfg.DisableCompression)
}

func TestLowLatencyConfig(t *testing.T) {
	tests := []struct {
		name            string
		wantTimeout     time.Duration
		wantDialTimeout time.Duration
		wantHeader      time.Duration
	}{
		{
			name:            "given low latency config, then has fast timeouts",
			wantTimeout:     5 * time.Second,
			wantDialTimeout: 2 * time.Second,
			wantHeader:      3 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LowLatencyConfig()

			assert.Equal(t, tt.wantTimeout, cfg.Timeout)
			assert.Equal(t, tt.wantDialTimeout, cfg.DialTimeout)
			assert.Equal(t, tt.wantHeader, cfg.ResponseHeaderTimeout)
			assert.Equal(t, 3*time.Second, cfg.TLSHandshakeTimeout)
			assert.Equal(t, DefaultConfig().MaxIdleConns, cfg.MaxIdleConns)
		})
	}
}

func TestNewConfig_Options(t *testing.T) {
	proxy, err := url.Parse("http://proxy.internal:3128")
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	mp := noop.NewMeterProvider()
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	logger := zerolog.Nop().With().Str("component", "test").Logger()
	base := NewMockTransport()

	tests := []struct {
		name  string
		opts  []Option
		check func(t *testing.T, cfg *internalConfig)
	}{
		{
			name: "given no options, then defaults are applied",
			check: func(t *testing.T, cfg *internalConfig) {
				assert.Equal(t, DefaultConfig(), cfg.httpConfig)
				assert.NotNil(t, cfg.Tracer)
				assert.NotNil(t, cfg.Metrics)
				assert.False(t, cfg.Debug)
				assert.Empty(t, cfg.baseAttributes())
			},
		},
		{
			name: "given service name, then it becomes a base attribute",
			opts: []Option{WithServiceName("connpass")},
			check: func(t *testing.T, cfg *internalConfig) {
				assert.Equal(t,
					[]attribute.KeyValue{attribute.String("http.client.name", "connpass")},
					cfg.baseAttributes(),
				)
			},
		},
		{
			name: "given providers, then they are used",
			opts: []Option{WithTracerProvider(tp), WithMeterProvider(mp)},
			check: func(t *testing.T, cfg *internalConfig) {
				assert.Same(t, tp, cfg.TracerProvider)
				assert.Equal(t, mp, cfg.MeterProvider)
			},
		},
		{
			name: "given nil providers, then globals are kept",
			opts: []Option{WithTracerProvider(nil), WithMeterProvider(nil)},
			check: func(t *testing.T, cfg *internalConfig) {
				assert.NotNil(t, cfg.TracerProvider)
				assert.NotNil(t, cfg.MeterProvider)
			},
		},
		{
			name: "given logging options, then debug is enabled",
			opts: []Option{WithLogger(logger), WithDebug(true), WithNetworkTrace(true)},
			check: func(t *testing.T, cfg *internalConfig) {
				assert.True(t, cfg.Debug)
				assert.True(t, cfg.NetworkTrace)
			},
		},
		{
			name: "given transport options, then they are stored",
			opts: []Option{WithTLSConfig(tlsCfg), WithProxyURL(proxy), WithConfig(LowLatencyConfig())},
			check: func(t *testing.T, cfg *internalConfig) {
				assert.Same(t, tlsCfg, cfg.TLSConfig)
				assert.Equal(t, proxy, cfg.ProxyURL)
				assert.Equal(t, LowLatencyConfig(), cfg.httpConfig)
			},
		},
		{
			name: "given base transport, then it replaces the pooled transport",
			opts: []Option{WithBaseTransport(base)},
			check: func(t *testing.T, cfg *internalConfig) {
				assert.Same(t, base, cfg.buildTransport())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newConfig(tt.opts...))
		})
	}
}

func TestBuildTransport(t *testing.T) {
	proxy, err := url.Parse("http://proxy.internal:3128")
	require.NoError(t, err)

	cfg := newConfig(WithConfig(LowLatencyConfig()), WithProxyURL(proxy))

	transport, ok := cfg.buildTransport().(*http.Transport)
	require.True(t, ok)

	assert.Equal(t, 20, transport.MaxIdleConns)
	assert.Equal(t, 20, transport.MaxIdleConnsPerHost)
	assert.Equal(t, 3*time.Second, transport.TLSHandshakeTimeout)
	assert.Equal(t, 3*time.Second, transport.ResponseHeaderTimeout)
	assert.True(t, transport.ForceAttemptHTTP2)

	req, err := http.NewRequest(http.MethodGet, "https://connpass.com/", nil)
	require.NoError(t, err)
	got, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, proxy.String(), got.String())
}
