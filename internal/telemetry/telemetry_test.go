package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetup(t *testing.T) {
	t.Run("given registry, then OTel metrics are gathered from it", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		recorder := tracetest.NewSpanRecorder()

		p, err := Setup(context.Background(), Config{
			ServiceName:    "connpass-exporter",
			ServiceVersion: "test",
			Registerer:     reg,
			SpanProcessors: []sdktrace.SpanProcessor{recorder},
		})
		require.NoError(t, err)
		defer p.Shutdown(context.Background())

		counter, err := p.MeterProvider().Meter("test").Int64Counter("connpass.test.requests")
		require.NoError(t, err)
		counter.Add(context.Background(), 2, metric.WithAttributes(attribute.String("query", "go")))

		_, span := p.TracerProvider().Tracer("test").Start(context.Background(), "collect")
		span.End()

		families, err := reg.Gather()
		require.NoError(t, err)

		var names []string
		for _, mf := range families {
			names = append(names, mf.GetName())
		}
		assert.True(t, containsPrefix(names, "connpass_test_requests"), "got %v", names)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "collect", spans[0].Name())
		assert.Contains(t, spans[0].Resource().Attributes(), attribute.String("service.name", "connpass-exporter"))
	})

	t.Run("given no registerer, then error", func(t *testing.T) {
		_, err := Setup(context.Background(), Config{ServiceName: "x"})
		assert.Error(t, err)
	})
}

func containsPrefix(names []string, prefix string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}
