package httpclient

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// sensitiveHeaders are masked in debug output.
var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Cookie":              true,
	"Proxy-Authorization": true,
	"X-Api-Key":           true,
}

const redacted = "***"

// debugTransport logs each request as an equivalent curl command and each
// response with its status and latency.
type debugTransport struct {
	base   http.RoundTripper
	logger zerolog.Logger
}

func newDebugTransport(base http.RoundTripper, logger zerolog.Logger) *debugTransport {
	return &debugTransport{base: base, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	logRequest(t.logger, req)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request failed")
		return nil, err
	}

	logResponse(t.logger, req, resp, time.Since(start))
	return resp, nil
}

// generateCurlCommand renders req as a curl command line with sensitive
// header values masked. Headers are sorted so output is stable.
//
// Example output:
//
//	curl 'https://connpass.com/api/v2/events/?keyword=go' -H 'X-Api-Key: ***'
func generateCurlCommand(req *http.Request) string {
	parts := []string{"curl"}
	if req.Method != http.MethodGet {
		parts = append(parts, "-X", req.Method)
	}
	parts = append(parts, fmt.Sprintf("'%s'", req.URL.String()))

	keys := make([]string, 0, len(req.Header))
	for k := range req.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range req.Header[k] {
			if sensitiveHeaders[http.CanonicalHeaderKey(k)] {
				v = redacted
			}
			parts = append(parts, "-H", fmt.Sprintf("'%s: %s'", k, v))
		}
	}

	return strings.Join(parts, " ")
}

func logRequest(logger zerolog.Logger, req *http.Request) {
	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("curl", generateCurlCommand(req)).
		Msg("HTTP request")
}

func logResponse(logger zerolog.Logger, req *http.Request, resp *http.Response, d time.Duration) {
	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Str("status_text", resp.Status).
		Dur("duration", d).
		Int64("content_length", resp.ContentLength).
		Msg("HTTP response")
}
