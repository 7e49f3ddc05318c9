package exporter

import (
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// config holds the retry, pacing and breaker policy of an Exporter.
type config struct {
	logger zerolog.Logger

	// maxAttempts bounds tries per query per run, first attempt included.
	maxAttempts uint

	// newBackOff returns a fresh policy for each query run.
	newBackOff func() backoff.BackOff

	requestsPerSecond float64
	burst             int

	// breakerFailures consecutive failed runs open a query's breaker for
	// breakerTimeout.
	breakerFailures uint32
	breakerTimeout  time.Duration

	now func() time.Time
}

func defaultConfig() config {
	return config{
		logger:      zerolog.Nop(),
		maxAttempts: 3,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 30 * time.Second
			return b
		},
		requestsPerSecond: 1,
		burst:             1,
		breakerFailures:   3,
		breakerTimeout:    30 * time.Minute,
		now:               time.Now,
	}
}

// Option configures an Exporter.
type Option func(*config)

// WithLogger sets the logger for collection results and retries.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxAttempts bounds tries per query per run. Values below 1 mean 1.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.maxAttempts = uint(n)
	}
}

// WithBackOff sets the delay policy between attempts. newBackOff is called
// once per query run.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *config) {
		if newBackOff != nil {
			c.newBackOff = newBackOff
		}
	}
}

// WithRateLimit paces requests across all queries. A non-positive rate
// disables pacing.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *config) {
		c.requestsPerSecond = requestsPerSecond
		if burst < 1 {
			burst = 1
		}
		c.burst = burst
	}
}

// WithCircuitBreaker opens a query's breaker after failures consecutive
// failed runs and keeps it open for timeout.
func WithCircuitBreaker(failures uint32, timeout time.Duration) Option {
	return func(c *config) {
		c.breakerFailures = failures
		c.breakerTimeout = timeout
	}
}

// WithClock replaces time.Now for the upcoming-event count and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
