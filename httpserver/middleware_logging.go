package httpserver

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// LoggerConfig configures the request logging middleware.
type LoggerConfig struct {
	Logger zerolog.Logger

	// serviceName is set internally by the server.
	serviceName string

	// SkipPaths are not logged. Scrape and probe endpoints are hit every
	// few seconds and would drown everything else.
	SkipPaths []string
}

// Logger logs one line per request. 4xx responses log at warn and 5xx
// at error.
func Logger(cfg LoggerConfig) Middleware {
	skipPaths := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			event := cfg.Logger.Info()
			switch {
			case wrapped.Status() >= 500:
				event = cfg.Logger.Error()
			case wrapped.Status() >= 400:
				event = cfg.Logger.Warn()
			}

			event.
				Str("service", cfg.serviceName).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.Status()).
				Dur("duration", time.Since(start)).
				Int("bytes", wrapped.BytesWritten()).
				Str("remote_addr", r.RemoteAddr)

			if id := RequestIDFromContext(r.Context()); id != "" {
				event.Str("request_id", id)
			}

			event.Msg("request completed")
		})
	}
}
