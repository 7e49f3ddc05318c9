package connpass

import (
	"context"
	"errors"
	"fmt"

	"github.com/kroma-labs/connpass-go/httpclient"
)

// ErrMissingField is wrapped by a DecodingError when a required wire field
// is absent or null.
var ErrMissingField = errors.New("missing required field")

// ErrorKind identifies which stage of the request pipeline produced an error.
type ErrorKind int

const (
	// KindUnknown is returned by Kind for nil errors and errors that did not
	// come from this package.
	KindUnknown ErrorKind = iota
	KindURLConstruction
	KindTransport
	KindClient
	KindServer
	KindUnexpectedStatus
	KindDecoding
)

func (k ErrorKind) String() string {
	switch k {
	case KindURLConstruction:
		return "url_construction"
	case KindTransport:
		return "transport"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindUnexpectedStatus:
		return "unexpected_status"
	case KindDecoding:
		return "decoding"
	default:
		return "unknown"
	}
}

// URLConstructionError reports a base URL, path or query that could not be
// composed into a valid request URL. It indicates misconfiguration.
type URLConstructionError struct {
	BaseURL string
	Path    string
	Err     error
}

func (e *URLConstructionError) Error() string {
	return fmt.Sprintf("connpass: cannot build URL from base %q and path %q: %v", e.BaseURL, e.Path, e.Err)
}

func (e *URLConstructionError) Unwrap() error { return e.Err }

// TransportError reports a request that produced no usable response:
// connection failures, timeouts, cancellation and body read failures.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("connpass: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ClientError reports a 4xx response. The request should not be repeated
// unmodified.
type ClientError struct {
	StatusCode int
	Reason     string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("connpass: client error %d %s", e.StatusCode, e.Reason)
}

// ServerError reports a 5xx response.
type ServerError struct {
	StatusCode int
	Reason     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("connpass: server error %d %s", e.StatusCode, e.Reason)
}

// UnexpectedStatusError reports a status code outside 200-599.
type UnexpectedStatusError struct {
	StatusCode int
	Reason     string
}

func (e *UnexpectedStatusError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("connpass: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("connpass: unexpected status %d %s", e.StatusCode, e.Reason)
}

// DecodingError reports a response body that does not match the expected
// schema. Field is the path of the offending value, e.g. "events[0].lat".
type DecodingError struct {
	Field string
	Err   error
}

func (e *DecodingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("connpass: decode response: %v", e.Err)
	}
	return fmt.Sprintf("connpass: decode %s: %v", e.Field, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// Kind returns the pipeline stage that produced err.
func Kind(err error) ErrorKind {
	var (
		urlErr        *URLConstructionError
		transportErr  *TransportError
		clientErr     *ClientError
		serverErr     *ServerError
		unexpectedErr *UnexpectedStatusError
		decodingErr   *DecodingError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &urlErr):
		return KindURLConstruction
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &clientErr):
		return KindClient
	case errors.As(err, &serverErr):
		return KindServer
	case errors.As(err, &unexpectedErr):
		return KindUnexpectedStatus
	case errors.As(err, &decodingErr):
		return KindDecoding
	default:
		return KindUnknown
	}
}

// Retryable reports whether repeating the same call may succeed. The client
// never retries on its own; this is guidance for callers that do.
//
// Server errors are retryable. Transport errors are retryable unless the
// caller cancelled the context or the failure is permanent, such as an
// invalid certificate or an unknown host.
func Retryable(err error) bool {
	var transportErr *TransportError

	switch Kind(err) {
	case KindServer:
		return true
	case KindTransport:
		errors.As(err, &transportErr)
		if errors.Is(transportErr.Err, context.Canceled) {
			return false
		}
		return !httpclient.IsPermanent(transportErr.Err)
	default:
		return false
	}
}
