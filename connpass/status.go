package connpass

import (
	"net/http"
	"strconv"
	"strings"
)

// Classify maps a status code to nil for 200-399 or to the matching error
// type. reason is the server's reason phrase; when empty the standard text
// for the code is used.
func Classify(statusCode int, reason string) error {
	if reason == "" {
		reason = http.StatusText(statusCode)
	}

	switch {
	case statusCode >= 200 && statusCode < 400:
		return nil
	case statusCode >= 400 && statusCode < 500:
		return &ClientError{StatusCode: statusCode, Reason: reason}
	case statusCode >= 500 && statusCode < 600:
		return &ServerError{StatusCode: statusCode, Reason: reason}
	default:
		return &UnexpectedStatusError{StatusCode: statusCode, Reason: reason}
	}
}

// classifyResponse classifies resp using the reason phrase from its status line.
func classifyResponse(resp *http.Response) error {
	return Classify(resp.StatusCode, reasonPhrase(resp))
}

// reasonPhrase extracts the reason from a status line such as
// "404 Not Found". Transports that set Status to the bare phrase are
// handled too.
func reasonPhrase(resp *http.Response) string {
	status := strings.TrimSpace(resp.Status)
	code := strconv.Itoa(resp.StatusCode)
	if rest, ok := strings.CutPrefix(status, code); ok {
		return strings.TrimSpace(rest)
	}
	return status
}
