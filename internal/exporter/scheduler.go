package exporter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Collector is what the scheduler runs.
type Collector interface {
	Collect(ctx context.Context) error
}

// Scheduler runs a Collector on a cron schedule. A run that is still going
// when the next one is due causes that next run to be skipped.
type Scheduler struct {
	collector Collector
	schedule  string
	cron      *cron.Cron
	logger    zerolog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler validates schedule, a standard five-field cron expression.
//
// Common expressions:
//   - "*/15 * * * *" - every 15 minutes
//   - "0 * * * *"    - hourly
//   - "0 9 * * 1-5"  - weekdays at 9 AM
func NewScheduler(c Collector, schedule string, logger zerolog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}

	return &Scheduler{
		collector: c,
		schedule:  schedule,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}, nil
}

// Run collects once immediately, then on every tick of the schedule until
// ctx is cancelled. It waits for a running collection before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.start(ctx); err != nil {
		return err
	}

	s.runOnce(ctx)

	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Scheduler) start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule collection: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().Str("schedule", s.schedule).Msg("scheduler started")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	if err := s.collector.Collect(ctx); err != nil {
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("scheduled collection had failures")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("scheduled collection completed")
}

// Stop stops the scheduler and waits for a running collection to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info().Msg("scheduler stopped")
}

// NextRun returns the next scheduled collection, or nil when not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
