// Package config loads the connpass CLI configuration from defaults, an
// optional YAML file, CONNPASS_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kroma-labs/connpass-go/connpass"
)

// EnvPrefix prefixes every environment variable, e.g. CONNPASS_API_KEY or
// CONNPASS_WATCH_LISTEN_ADDR.
const EnvPrefix = "CONNPASS"

// Output formats accepted by the `output` key.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"api-key":     "api_key",
	"base-url":    "base_url",
	"timeout":     "timeout",
	"debug":       "debug",
	"output":      "output",
	"log-level":   "logging.level",
	"log-format":  "logging.format",
	"listen-addr": "watch.listen_addr",
	"schedule":    "watch.schedule",
}

// Load reads the configuration. An explicit configPath must exist; without
// one the standard locations are searched and a missing file is not an
// error. Flags that are set on flags override everything else.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".connpass"))
		}
		v.AddConfigPath("/etc/connpass/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("error binding flag %q: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key needs one so
// that AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", connpass.DefaultBaseURL)
	v.SetDefault("user_agent", "")
	v.SetDefault("timeout", "30s")
	v.SetDefault("debug", false)
	v.SetDefault("output", OutputTable)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("watch.schedule", "*/15 * * * *")
	v.SetDefault("watch.listen_addr", ":9464")
	v.SetDefault("watch.max_attempts", 3)
	v.SetDefault("watch.requests_per_second", 1.0)
	v.SetDefault("watch.queries", []WatchQuery{})
}

// validate checks the settings every command needs.
func validate(cfg *Config) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("api_key is required (set CONNPASS_API_KEY or --api-key)")
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", cfg.Timeout)
	}

	validOutputs := map[string]bool{
		OutputTable: true,
		OutputJSON:  true,
		OutputYAML:  true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("invalid output format: %s", cfg.Output)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// ValidateWatch checks the settings only the `watch` command uses.
func (c *Config) ValidateWatch() error {
	w := c.Watch

	if _, err := cron.ParseStandard(w.Schedule); err != nil {
		return fmt.Errorf("invalid watch.schedule %q: %w", w.Schedule, err)
	}
	if w.ListenAddr == "" {
		return fmt.Errorf("watch.listen_addr must not be empty")
	}
	if w.MaxAttempts < 1 {
		return fmt.Errorf("watch.max_attempts must be at least 1, got %d", w.MaxAttempts)
	}
	if w.RequestsPerSecond <= 0 {
		return fmt.Errorf("watch.requests_per_second must be positive, got %g", w.RequestsPerSecond)
	}
	if len(w.Queries) == 0 {
		return fmt.Errorf("watch.queries must contain at least one query")
	}

	seen := make(map[string]bool, len(w.Queries))
	for i, q := range w.Queries {
		if q.Name == "" {
			return fmt.Errorf("watch.queries[%d]: name is required", i)
		}
		if seen[q.Name] {
			return fmt.Errorf("watch.queries[%d]: duplicate name %q", i, q.Name)
		}
		seen[q.Name] = true

		if _, err := q.EventsQuery(); err != nil {
			return fmt.Errorf("watch.queries[%d] (%s): %w", i, q.Name, err)
		}
	}

	return nil
}

// EventsQuery converts q to a client query.
func (q WatchQuery) EventsQuery() (*connpass.EventsQuery, error) {
	if q.Count < 0 || q.Count > connpass.MaxCount {
		return nil, fmt.Errorf("count must be between 0 and %d, got %d", connpass.MaxCount, q.Count)
	}

	eq := &connpass.EventsQuery{
		Keyword:   q.Keyword,
		KeywordOr: q.KeywordOr,
		Subdomain: q.Subdomain,
		YM:        q.YM,
	}
	if q.Count > 0 {
		eq.Count = connpass.Int(q.Count)
	}

	for _, s := range q.Prefecture {
		p, err := connpass.ParsePrefecture(s)
		if err != nil {
			return nil, err
		}
		eq.Prefecture = append(eq.Prefecture, p)
	}

	return eq, nil
}
