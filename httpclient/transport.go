package httpclient

import (
	"fmt"
	"net/http"
	"net/http/httptrace"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var _ http.RoundTripper = (*otelTransport)(nil)

// otelTransport wraps an http.RoundTripper with a client span per request
// and the http.client.* instruments.
type otelTransport struct {
	base       http.RoundTripper
	cfg        *internalConfig
	propagator propagation.TextMapPropagator
}

func newOtelTransport(base http.RoundTripper, cfg *internalConfig) *otelTransport {
	return &otelTransport{
		base: base,
		cfg:  cfg,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *otelTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx, span := t.cfg.Tracer.Start(req.Context(), "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.requestAttributes(req)...),
	)
	defer span.End()

	// The outgoing request must not share a header map with the caller's.
	req = req.Clone(ctx)
	t.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	base := t.cfg.baseAttributes()
	t.cfg.Metrics.recordActiveRequestStart(ctx, base)
	defer t.cfg.Metrics.recordActiveRequestEnd(ctx, base)

	var nt *networkTrace
	if t.cfg.NetworkTrace {
		nt = &networkTrace{}
		req = req.WithContext(httptrace.WithClientTrace(ctx, nt.clientTrace()))
	}

	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)

	if nt != nil {
		nt.addEvents(span)
		nt.record(ctx, t.cfg.Metrics, base)
	}

	if err != nil {
		errorType := classifyError(err)
		setSpanError(span, err, errorType)
		t.cfg.Metrics.recordError(ctx, errorType, base)
		t.cfg.Metrics.recordRequestDuration(ctx, elapsed,
			append(t.serverAttributes(req), attribute.String("error.type", errorType)))
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.ContentLength > 0 {
		span.SetAttributes(attribute.Int64("http.response.body.size", resp.ContentLength))
		t.cfg.Metrics.recordResponseBodySize(ctx, resp.ContentLength, base)
	}

	durationAttrs := append(t.serverAttributes(req),
		attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		errorType := errorTypeFromStatusCode(resp.StatusCode)
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
		span.SetAttributes(attribute.String("error.type", errorType))
		durationAttrs = append(durationAttrs, attribute.String("error.type", errorType))
	}
	t.cfg.Metrics.recordRequestDuration(ctx, elapsed, durationAttrs)

	return resp, nil
}

func (t *otelTransport) requestAttributes(req *http.Request) []attribute.KeyValue {
	attrs := t.serverAttributes(req)
	if req.URL != nil {
		attrs = append(attrs,
			attribute.String("url.full", redactedURL(req)),
			attribute.String("url.scheme", req.URL.Scheme),
		)
	}
	if ua := req.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}
	return attrs
}

// serverAttributes returns the low-cardinality attributes shared by spans
// and duration metrics.
func (t *otelTransport) serverAttributes(req *http.Request) []attribute.KeyValue {
	attrs := append(t.cfg.baseAttributes(),
		attribute.String("http.request.method", req.Method))
	if req.URL == nil {
		return attrs
	}

	if host := req.URL.Hostname(); host != "" {
		attrs = append(attrs, attribute.String("server.address", host))
	}
	if port, err := strconv.Atoi(req.URL.Port()); err == nil {
		attrs = append(attrs, attribute.Int("server.port", port))
	} else if req.URL.Scheme == "https" {
		attrs = append(attrs, attribute.Int("server.port", 443))
	} else if req.URL.Scheme == "http" {
		attrs = append(attrs, attribute.Int("server.port", 80))
	}
	return attrs
}

// redactedURL strips userinfo from the request URL before it is recorded.
func redactedURL(req *http.Request) string {
	u := *req.URL
	u.User = nil
	return u.String()
}
