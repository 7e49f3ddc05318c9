// Package exporter runs named event searches against the connpass API and
// exposes their results as Prometheus metrics.
//
// The connpass client never retries. The exporter is the caller that owns
// that policy: failures for which connpass.Retryable reports true are
// retried with backoff, requests are paced by a shared rate limiter, and
// each query has its own circuit breaker so a persistently failing search
// stops consuming the rate budget of the others.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kroma-labs/connpass-go/connpass"
	"github.com/kroma-labs/connpass-go/httpclient"
)

// EventSearcher is the part of *connpass.Client the exporter needs.
type EventSearcher interface {
	GetEvents(ctx context.Context, q *connpass.EventsQuery) (*connpass.EventsResponse, error)
}

// Query is one named search. Name becomes the "query" label.
type Query struct {
	Name   string
	Events *connpass.EventsQuery
}

type eventsBreaker = gobreaker.CircuitBreaker[*connpass.EventsResponse]

// Exporter collects all queries on demand. Collect is safe to call from
// several goroutines, though the scheduler never overlaps runs.
type Exporter struct {
	searcher EventSearcher
	queries  []Query
	cfg      config
	logger   zerolog.Logger
	limiter  *rate.Limiter
	breakers map[string]*eventsBreaker
	metrics  *metrics

	mu        sync.Mutex
	succeeded map[string]bool
}

// New creates an Exporter and registers its collectors with reg.
//
// Example:
//
//	exp, err := exporter.New(client, queries, registry,
//	    exporter.WithMaxAttempts(3),
//	    exporter.WithRateLimit(1, 1),
//	)
func New(searcher EventSearcher, queries []Query, reg prometheus.Registerer, opts ...Option) (*Exporter, error) {
	if len(queries) == 0 {
		return nil, errors.New("exporter: at least one query is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := newMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("exporter: register metrics: %w", err)
	}

	limit := rate.Inf
	if cfg.requestsPerSecond > 0 {
		limit = rate.Limit(cfg.requestsPerSecond)
	}

	e := &Exporter{
		searcher:  searcher,
		queries:   queries,
		cfg:       cfg,
		logger:    cfg.logger.With().Str("component", "exporter").Logger(),
		limiter:   rate.NewLimiter(limit, cfg.burst),
		breakers:  make(map[string]*eventsBreaker, len(queries)),
		metrics:   m,
		succeeded: make(map[string]bool, len(queries)),
	}

	for _, q := range queries {
		if _, dup := e.breakers[q.Name]; dup {
			return nil, fmt.Errorf("exporter: duplicate query name %q", q.Name)
		}
		e.breakers[q.Name] = e.newBreaker(q.Name)
		m.breakerState.WithLabelValues(q.Name).Set(float64(gobreaker.StateClosed))
	}

	return e, nil
}

func (e *Exporter) newBreaker(name string) *eventsBreaker {
	return gobreaker.NewCircuitBreaker[*connpass.EventsResponse](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     e.cfg.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return e.cfg.breakerFailures > 0 && counts.ConsecutiveFailures >= e.cfg.breakerFailures
		},
		// Only failures that retrying could fix say something about the
		// API's health. A 4xx or a decode error is the query's own problem.
		IsSuccessful: func(err error) bool {
			return err == nil || !connpass.Retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.metrics.breakerState.WithLabelValues(name).Set(float64(to))
			e.logger.Warn().
				Str("query", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// Collect runs every query once. It returns the errors of all failed
// queries joined; the metrics of successful queries are updated regardless.
func (e *Exporter) Collect(ctx context.Context) error {
	errs := make([]error, len(e.queries))

	var g errgroup.Group
	for i, q := range e.queries {
		g.Go(func() error {
			errs[i] = e.collect(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (e *Exporter) collect(ctx context.Context, q Query) error {
	logger := e.logger.With().Str("query", q.Name).Logger()
	start := time.Now()

	resp, err := e.breakers[q.Name].Execute(func() (*connpass.EventsResponse, error) {
		return e.fetch(ctx, q, logger)
	})

	e.metrics.duration.WithLabelValues(q.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		result := resultLabel(err)
		e.metrics.collections.WithLabelValues(q.Name, result).Inc()
		logger.Error().
			Err(err).
			Str("result", result).
			Bool("retryable", connpass.Retryable(err)).
			Msg("collection failed")
		return fmt.Errorf("query %s: %w", q.Name, err)
	}

	now := e.cfg.now()
	upcoming := countUpcoming(resp.Events, now)

	e.metrics.available.WithLabelValues(q.Name).Set(float64(resp.ResultsAvailable))
	e.metrics.upcoming.WithLabelValues(q.Name).Set(float64(upcoming))
	e.metrics.lastSuccess.WithLabelValues(q.Name).Set(float64(now.Unix()))
	e.metrics.collections.WithLabelValues(q.Name, resultSuccess).Inc()

	e.mu.Lock()
	e.succeeded[q.Name] = true
	e.mu.Unlock()

	logger.Info().
		Int("available", resp.ResultsAvailable).
		Int("returned", resp.ResultsReturned).
		Int("upcoming", upcoming).
		Dur("duration", time.Since(start)).
		Msg("collection succeeded")

	return nil
}

// fetch calls the API until it succeeds, fails permanently or runs out of
// attempts. Every attempt waits for the shared limiter first.
func (e *Exporter) fetch(ctx context.Context, q Query, logger zerolog.Logger) (*connpass.EventsResponse, error) {
	operation := func() (*connpass.EventsResponse, error) {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := e.searcher.GetEvents(ctx, q.Events)
		if err != nil && !connpass.Retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(e.cfg.newBackOff()),
		backoff.WithMaxTries(e.cfg.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn().
				Err(err).
				Str("kind", connpass.Kind(err).String()).
				Bool("transient", httpclient.IsTransient(err)).
				Dur("retry_in", next).
				Msg("attempt failed, retrying")
		}),
	)

	// The last attempt's error comes back still wrapped.
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	return resp, err
}

// Ready fails until every query has succeeded at least once.
func (e *Exporter) Ready(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pending []string
	for _, q := range e.queries {
		if !e.succeeded[q.Name] {
			pending = append(pending, q.Name)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	sort.Strings(pending)
	return fmt.Errorf("no successful collection yet for: %s", strings.Join(pending, ", "))
}

// resultLabel maps a failed run to the "result" label.
func resultLabel(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return resultCircuitOpen
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if connpass.Kind(err) == connpass.KindUnknown {
			return resultCanceled
		}
	}
	return connpass.Kind(err).String()
}

// countUpcoming counts events that start after now and are not cancelled.
func countUpcoming(events []connpass.Event, now time.Time) int {
	n := 0
	for _, ev := range events {
		if ev.StartedAt.After(now) && ev.OpenStatus != connpass.OpenStatusCancelled {
			n++
		}
	}
	return n
}
