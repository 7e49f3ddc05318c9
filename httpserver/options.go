package httpserver

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Option configures the server.
type Option func(*Config)

// WithConfig replaces all settings. Apply it before other options.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithServiceName sets the name reported in request logs and health
// responses.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithHandler sets the HTTP handler for the server.
func WithHandler(h http.Handler) Option {
	return func(c *Config) {
		c.Handler = h
	}
}

// WithLogger sets the logger for lifecycle events only. Use WithLogging for
// per-request logs.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithLogging enables request logging.
//
// Example:
//
//	server := httpserver.New(
//	    httpserver.WithLogging(httpserver.LoggerConfig{
//	        Logger:    logger,
//	        SkipPaths: []string{"/metrics", "/livez"},
//	    }),
//	    httpserver.WithHandler(mux),
//	)
func WithLogging(cfg LoggerConfig) Option {
	return func(c *Config) {
		c.LoggerConfig = &cfg
	}
}

// WithMiddleware appends middleware. They run inside the built-in
// middleware, closest to the handler.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Config) {
		c.Middleware = append(c.Middleware, mw...)
	}
}
