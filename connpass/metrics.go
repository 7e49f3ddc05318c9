package connpass

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// operationMetrics records one measurement per client operation, on top of
// the per-request http.client.* instruments of the transport.
type operationMetrics struct {
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

func newOperationMetrics(meter metric.Meter) (*operationMetrics, error) {
	duration, err := meter.Float64Histogram(
		"connpass.client.operation.duration",
		metric.WithDescription("Duration of connpass client operations including decoding"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
		),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(
		"connpass.client.operation.errors",
		metric.WithDescription("Number of failed connpass client operations by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &operationMetrics{duration: duration, errors: errs}, nil
}

func (m *operationMetrics) record(ctx context.Context, op string, d time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String("operation", op)}
	if err != nil {
		attrs = append(attrs, attribute.String("error.kind", Kind(err).String()))
		m.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}
