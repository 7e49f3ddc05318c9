// Package cli implements the connpass command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kroma-labs/connpass-go/connpass"
	"github.com/kroma-labs/connpass-go/httpclient"
	"github.com/kroma-labs/connpass-go/internal/config"
	"github.com/kroma-labs/connpass-go/internal/logging"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// app is the state shared by all commands of one invocation.
type app struct {
	build   BuildInfo
	cfgFile string

	cfg    *config.Config
	logger zerolog.Logger
	client *connpass.Client

	stdout io.Writer
	stderr io.Writer

	// transport replaces the network in tests.
	transport http.RoundTripper
}

// NewRootCommand returns the connpass command tree writing to stdout and
// stderr.
func NewRootCommand(build BuildInfo, stdout, stderr io.Writer) *cobra.Command {
	return newRootCommand(&app{build: build, stdout: stdout, stderr: stderr, logger: zerolog.Nop()})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "connpass",
		Short: "Search connpass events, groups and users",
		Long: `connpass is a command line client for the connpass API v2.

It searches events, groups and users, and can run as a Prometheus exporter
that tracks how many events match a set of saved searches.

The API key is read from --api-key, the CONNPASS_API_KEY environment
variable or the api_key key of the config file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
	}

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml, ~/.connpass/config.yaml or /etc/connpass/config.yaml)")
	flags.String("api-key", "", "connpass API key")
	flags.String("base-url", connpass.DefaultBaseURL, "API base URL")
	flags.Duration("timeout", 0, "request timeout (default 30s)")
	flags.Bool("debug", false, "log every request and response (the API key is masked)")
	flags.StringP("output", "o", config.OutputTable, "output format: table, json or yaml")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "console", "log format: console or json")

	root.AddCommand(
		newEventsCommand(a),
		newGroupsCommand(a),
		newUsersCommand(a),
		newProfileCommand(a),
		newWatchCommand(a),
		newVersionCommand(a),
	)

	return root
}

// initialize loads the configuration and builds the logger and client.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	a.logger = logging.New(cfg.Logging, a.stderr)
	a.client = a.newClient()

	a.logger.Debug().
		Str("base_url", cfg.BaseURL).
		Str("output", cfg.Output).
		Dur("timeout", cfg.Timeout).
		Msg("configuration loaded")

	return nil
}

func (a *app) newClient(extra ...connpass.Option) *connpass.Client {
	httpCfg := httpclient.LowLatencyConfig()
	if a.cfg.Timeout > 0 {
		httpCfg.Timeout = a.cfg.Timeout
	}

	opts := []connpass.Option{
		connpass.WithBaseURL(a.cfg.BaseURL),
		connpass.WithHTTPConfig(httpCfg),
		connpass.WithLogger(a.logger),
		connpass.WithDebug(a.cfg.Debug),
	}
	if a.cfg.UserAgent != "" {
		opts = append(opts, connpass.WithUserAgent(a.cfg.UserAgent))
	}
	if a.transport != nil {
		opts = append(opts, connpass.WithTransport(a.transport))
	}

	return connpass.New(a.cfg.APIKey, append(opts, extra...)...)
}

// Execute runs the command tree and returns its error.
func Execute(ctx context.Context, build BuildInfo, stdout, stderr io.Writer, args []string) error {
	root := NewRootCommand(build, stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
