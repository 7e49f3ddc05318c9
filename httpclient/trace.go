package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http/httptrace"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Error type classifications for the error.type attribute.
const (
	ErrorTypeTimeout           = "timeout"
	ErrorTypeConnectionRefused = "connection_refused"
	ErrorTypeDNSError          = "dns_error"
	ErrorTypeTLSError          = "tls_error"
	ErrorTypeCancelled         = "cancelled"
	ErrorTypeConnectionReset   = "connection_reset"
	ErrorTypeEOF               = "eof"
	ErrorTypeUnknown           = "unknown"
)

// networkTrace holds timings collected through httptrace.
type networkTrace struct {
	dnsStart, dnsDone         time.Time
	connectStart, connectDone time.Time
	tlsStart, tlsDone         time.Time
	wroteRequest, firstByte   time.Time
	connReused                bool
	negotiatedProtocol        string
}

func (nt *networkTrace) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart:     func(httptrace.DNSStartInfo) { nt.dnsStart = time.Now() },
		DNSDone:      func(httptrace.DNSDoneInfo) { nt.dnsDone = time.Now() },
		ConnectStart: func(_, _ string) { nt.connectStart = time.Now() },
		ConnectDone:  func(_, _ string, _ error) { nt.connectDone = time.Now() },
		GotConn: func(info httptrace.GotConnInfo) {
			nt.connReused = info.Reused
		},
		TLSHandshakeStart: func() { nt.tlsStart = time.Now() },
		TLSHandshakeDone: func(state tls.ConnectionState, _ error) {
			nt.tlsDone = time.Now()
			nt.negotiatedProtocol = state.NegotiatedProtocol
		},
		WroteRequest:         func(httptrace.WroteRequestInfo) { nt.wroteRequest = time.Now() },
		GotFirstResponseByte: func() { nt.firstByte = time.Now() },
	}
}

func (nt *networkTrace) addEvents(span trace.Span) {
	if d, ok := between(nt.dnsStart, nt.dnsDone); ok {
		span.AddEvent("dns.done", trace.WithTimestamp(nt.dnsDone),
			trace.WithAttributes(attribute.Float64("dns.duration_ms", ms(d))))
	}
	if d, ok := between(nt.connectStart, nt.connectDone); ok {
		span.AddEvent("connect.done", trace.WithTimestamp(nt.connectDone),
			trace.WithAttributes(
				attribute.Float64("connect.duration_ms", ms(d)),
				attribute.Bool("connection.reused", nt.connReused),
			))
	}
	if d, ok := between(nt.tlsStart, nt.tlsDone); ok {
		span.AddEvent("tls.done", trace.WithTimestamp(nt.tlsDone),
			trace.WithAttributes(
				attribute.Float64("tls.duration_ms", ms(d)),
				attribute.String("tls.protocol", nt.negotiatedProtocol),
			))
	}
	if d, ok := between(nt.wroteRequest, nt.firstByte); ok {
		span.AddEvent("got_first_response_byte", trace.WithTimestamp(nt.firstByte),
			trace.WithAttributes(attribute.Float64("ttfb_ms", ms(d))))
	}
}

func (nt *networkTrace) record(ctx context.Context, m *metrics, attrs []attribute.KeyValue) {
	if d, ok := between(nt.dnsStart, nt.dnsDone); ok {
		m.recordDNSDuration(ctx, d, attrs)
	}
	if d, ok := between(nt.tlsStart, nt.tlsDone); ok {
		m.recordTLSDuration(ctx, d, attrs)
	}
	if d, ok := between(nt.wroteRequest, nt.firstByte); ok {
		m.recordTTFB(ctx, d, attrs)
	}
}

func between(from, to time.Time) (time.Duration, bool) {
	if from.IsZero() || to.IsZero() {
		return 0, false
	}
	return to.Sub(from), true
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// classifyError returns an error.type classification for a transport error.
func classifyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ErrorTypeCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTypeTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorTypeDNSError
	}

	var recordErr tls.RecordHeaderError
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &recordErr) || errors.As(err, &certErr) {
		return ErrorTypeTLSError
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return ErrorTypeConnectionRefused
	case errors.Is(err, syscall.ECONNRESET):
		return ErrorTypeConnectionReset
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrorTypeEOF
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return ErrorTypeTimeout
	case strings.Contains(msg, "connection refused"):
		return ErrorTypeConnectionRefused
	case strings.Contains(msg, "connection reset"):
		return ErrorTypeConnectionReset
	case strings.Contains(msg, "no such host"):
		return ErrorTypeDNSError
	case strings.Contains(msg, "x509"), strings.Contains(msg, "tls:"),
		strings.Contains(msg, "certificate"):
		return ErrorTypeTLSError
	case strings.Contains(msg, "eof"):
		return ErrorTypeEOF
	}

	return ErrorTypeUnknown
}

// errorTypeFromStatusCode uses the status code itself as error.type for 4xx/5xx.
func errorTypeFromStatusCode(statusCode int) string {
	if statusCode >= 400 {
		return strconv.Itoa(statusCode)
	}
	return ""
}

func setSpanError(span trace.Span, err error, errorType string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errorType != "" {
		span.SetAttributes(attribute.String("error.type", errorType))
	}
}
