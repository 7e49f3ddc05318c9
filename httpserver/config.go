package httpserver

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the HTTP server configuration parameters.
//
// Example:
//
//	cfg := httpserver.DefaultConfig()
//	cfg.Addr = ":9464"
//
//	server := httpserver.New(
//	    httpserver.WithConfig(cfg),
//	    httpserver.WithHandler(mux),
//	)
type Config struct {
	// Addr is the TCP address to listen on.
	// Default: ":9464"
	Addr string

	// ServiceName appears in request logs and health responses.
	// Default: "connpass-exporter"
	ServiceName string

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 5s
	ReadTimeout time.Duration

	// ReadHeaderTimeout is the maximum duration for reading request headers.
	// Default: 5s
	ReadHeaderTimeout time.Duration

	// WriteTimeout bounds writing the response. A scrape renders every
	// registered series, so this is more generous than ReadTimeout.
	// Default: 30s
	WriteTimeout time.Duration

	// IdleTimeout is the keep-alive idle limit between scrapes.
	// Default: 120s
	IdleTimeout time.Duration

	// ShutdownTimeout is how long in-flight requests may run after
	// shutdown starts.
	// Default: 10s
	ShutdownTimeout time.Duration

	// Logger receives lifecycle events.
	Logger zerolog.Logger

	// LoggerConfig enables request logging. ServiceName is applied automatically.
	LoggerConfig *LoggerConfig

	// Middleware wraps Handler, outermost first.
	Middleware []Middleware

	// Handler serves requests. Required.
	Handler http.Handler
}

// DefaultConfig returns settings suited to a Prometheus scrape target.
func DefaultConfig() Config {
	return Config{
		Addr:              ":9464",
		ServiceName:       "connpass-exporter",
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}
