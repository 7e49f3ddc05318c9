package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kroma-labs/connpass-go/connpass"
	"github.com/kroma-labs/connpass-go/httpclient"
	"github.com/kroma-labs/connpass-go/httpserver"
	"github.com/kroma-labs/connpass-go/internal/exporter"
	"github.com/kroma-labs/connpass-go/internal/telemetry"
)

const exporterServiceName = "connpass-exporter"

func newWatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the saved searches on a schedule and export Prometheus metrics",
		Long: `Run the searches under watch.queries on the watch.schedule cron schedule
and serve the results on /metrics, with /livez and /readyz probes.

Failures the API may recover from (5xx responses, timeouts, refused
connections) are retried up to watch.max_attempts times with exponential
backoff. Requests are paced to watch.requests_per_second across all
queries, and a query that keeps failing is skipped for a while.`,
		Example: `  connpass watch --config watch.yaml
  CONNPASS_WATCH_LISTEN_ADDR=:9100 connpass watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx)
		},
	}

	cmd.Flags().String("listen-addr", ":9464", "address to serve metrics and probes on")
	cmd.Flags().String("schedule", "*/15 * * * *", "cron schedule of the collections")

	return cmd
}

func (a *app) runWatch(ctx context.Context) error {
	if err := a.cfg.ValidateWatch(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	queries := make([]exporter.Query, 0, len(a.cfg.Watch.Queries))
	for _, wq := range a.cfg.Watch.Queries {
		eq, err := wq.EventsQuery()
		if err != nil {
			return err
		}
		queries = append(queries, exporter.Query{Name: wq.Name, Events: eq})
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    exporterServiceName,
		ServiceVersion: a.build.Version,
		Registerer:     registry,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	// Scheduled runs are not interactive, so use the patient transport
	// settings rather than the CLI's fail-fast ones.
	httpCfg := httpclient.DefaultConfig()
	if a.cfg.Timeout > 0 {
		httpCfg.Timeout = a.cfg.Timeout
	}
	client := a.newClient(
		connpass.WithHTTPConfig(httpCfg),
		connpass.WithTracerProvider(providers.TracerProvider()),
		connpass.WithMeterProvider(providers.MeterProvider()),
	)

	exp, err := exporter.New(client, queries, registry,
		exporter.WithLogger(a.logger),
		exporter.WithMaxAttempts(a.cfg.Watch.MaxAttempts),
		exporter.WithRateLimit(a.cfg.Watch.RequestsPerSecond, 1),
	)
	if err != nil {
		return err
	}

	scheduler, err := exporter.NewScheduler(exp, a.cfg.Watch.Schedule, a.logger)
	if err != nil {
		return err
	}

	server := httpserver.New(
		httpserver.WithAddr(a.cfg.Watch.ListenAddr),
		httpserver.WithServiceName(exporterServiceName),
		httpserver.WithLogger(a.logger),
		httpserver.WithLogging(httpserver.LoggerConfig{
			Logger:    a.logger,
			SkipPaths: []string{exporter.PathMetrics, exporter.PathLive, exporter.PathReady},
		}),
		httpserver.WithHandler(exporter.Handler(registry, exp, exporterServiceName, a.build.Version)),
	)

	a.logger.Info().
		Int("queries", len(queries)).
		Str("schedule", a.cfg.Watch.Schedule).
		Str("listen_addr", a.cfg.Watch.ListenAddr).
		Msg("starting exporter")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.ListenAndServe(ctx) })
	g.Go(func() error { return scheduler.Run(ctx) })
	return g.Wait()
}
