package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroma-labs/connpass-go/connpass"
)

const sampleConfig = `
api_key: file-key
timeout: 10s
output: yaml
logging:
  level: debug
  format: json
watch:
  schedule: "0 * * * *"
  max_attempts: 5
  queries:
    - name: go-tokyo
      keyword: [Go]
      prefecture: [tokyo]
      count: 50
    - name: python
      keyword_or: [Python, Django]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	// Empty variables count as unset.
	for _, key := range []string{"CONNPASS_API_KEY", "CONNPASS_OUTPUT", "CONNPASS_TIMEOUT", "CONNPASS_BASE_URL"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("given config file, then values and defaults are merged", func(t *testing.T) {
		isolate(t)

		cfg, err := Load(writeConfig(t, sampleConfig), nil)
		require.NoError(t, err)

		assert.Equal(t, "file-key", cfg.APIKey)
		assert.Equal(t, connpass.DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, OutputYAML, cfg.Output)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.True(t, cfg.Logging.Color)

		assert.Equal(t, "0 * * * *", cfg.Watch.Schedule)
		assert.Equal(t, ":9464", cfg.Watch.ListenAddr)
		assert.Equal(t, 5, cfg.Watch.MaxAttempts)
		assert.InDelta(t, 1.0, cfg.Watch.RequestsPerSecond, 0)
		require.Len(t, cfg.Watch.Queries, 2)
		assert.Equal(t, WatchQuery{
			Name:       "go-tokyo",
			Keyword:    []string{"Go"},
			Prefecture: []string{"tokyo"},
			Count:      50,
		}, cfg.Watch.Queries[0])
		assert.Equal(t, []string{"Python", "Django"}, cfg.Watch.Queries[1].KeywordOr)
	})

	t.Run("given environment, then it overrides the file", func(t *testing.T) {
		isolate(t)
		t.Setenv("CONNPASS_API_KEY", "env-key")
		t.Setenv("CONNPASS_TIMEOUT", "3s")

		cfg, err := Load(writeConfig(t, sampleConfig), nil)
		require.NoError(t, err)

		assert.Equal(t, "env-key", cfg.APIKey)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
	})

	t.Run("given changed flags, then they override environment and file", func(t *testing.T) {
		isolate(t)
		t.Setenv("CONNPASS_OUTPUT", "table")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("api-key", "", "")
		flags.String("output", "table", "")
		flags.String("log-level", "info", "")
		require.NoError(t, flags.Parse([]string{"--output=json"}))

		cfg, err := Load(writeConfig(t, sampleConfig), flags)
		require.NoError(t, err)

		assert.Equal(t, OutputJSON, cfg.Output)
		assert.Equal(t, "file-key", cfg.APIKey, "unchanged flag must not override the file")
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("given no config file and API key in environment, then defaults apply", func(t *testing.T) {
		isolate(t)
		t.Setenv("CONNPASS_API_KEY", "env-key")

		cfg, err := Load("", nil)
		require.NoError(t, err)

		assert.Equal(t, "env-key", cfg.APIKey)
		assert.Equal(t, OutputTable, cfg.Output)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, "*/15 * * * *", cfg.Watch.Schedule)
		assert.Empty(t, cfg.Watch.Queries)
	})

	t.Run("given explicit path that does not exist, then error", func(t *testing.T) {
		isolate(t)

		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config")
	})

	t.Run("given no API key anywhere, then error", func(t *testing.T) {
		isolate(t)

		_, err := Load(writeConfig(t, "output: json\n"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api_key is required")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIKey:  "key",
			BaseURL: connpass.DefaultBaseURL,
			Output:  OutputTable,
			Logging: LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "given valid config, then no error",
			mutate: func(c *Config) {},
		},
		{
			name:    "given empty base URL, then error",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantErr: "base_url",
		},
		{
			name:    "given negative timeout, then error",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: "timeout",
		},
		{
			name:    "given unknown output, then error",
			mutate:  func(c *Config) { c.Output = "xml" },
			wantErr: "invalid output format: xml",
		},
		{
			name:    "given unknown level, then error",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: "invalid logging level: trace",
		},
		{
			name:    "given unknown format, then error",
			mutate:  func(c *Config) { c.Logging.Format = "logfmt" },
			wantErr: "invalid logging format: logfmt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateWatch(t *testing.T) {
	valid := func() *Config {
		return &Config{Watch: WatchConfig{
			Schedule:          "*/15 * * * *",
			ListenAddr:        ":9464",
			MaxAttempts:       3,
			RequestsPerSecond: 1,
			Queries:           []WatchQuery{{Name: "go", Keyword: []string{"Go"}}},
		}}
	}

	tests := []struct {
		name    string
		mutate  func(w *WatchConfig)
		wantErr string
	}{
		{
			name:   "given valid watch config, then no error",
			mutate: func(w *WatchConfig) {},
		},
		{
			name:    "given bad schedule, then error",
			mutate:  func(w *WatchConfig) { w.Schedule = "every minute" },
			wantErr: "invalid watch.schedule",
		},
		{
			name:    "given empty listen address, then error",
			mutate:  func(w *WatchConfig) { w.ListenAddr = "" },
			wantErr: "listen_addr",
		},
		{
			name:    "given zero attempts, then error",
			mutate:  func(w *WatchConfig) { w.MaxAttempts = 0 },
			wantErr: "max_attempts",
		},
		{
			name:    "given zero rate, then error",
			mutate:  func(w *WatchConfig) { w.RequestsPerSecond = 0 },
			wantErr: "requests_per_second",
		},
		{
			name:    "given no queries, then error",
			mutate:  func(w *WatchConfig) { w.Queries = nil },
			wantErr: "at least one query",
		},
		{
			name:    "given unnamed query, then error",
			mutate:  func(w *WatchConfig) { w.Queries[0].Name = "" },
			wantErr: "name is required",
		},
		{
			name: "given duplicate names, then error",
			mutate: func(w *WatchConfig) {
				w.Queries = append(w.Queries, WatchQuery{Name: "go"})
			},
			wantErr: `duplicate name "go"`,
		},
		{
			name:    "given unknown prefecture, then error",
			mutate:  func(w *WatchConfig) { w.Queries[0].Prefecture = []string{"atlantis"} },
			wantErr: "unknown prefecture",
		},
		{
			name:    "given count above the page limit, then error",
			mutate:  func(w *WatchConfig) { w.Queries[0].Count = 101 },
			wantErr: "count must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg.Watch)

			err := cfg.ValidateWatch()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWatchQuery_EventsQuery(t *testing.T) {
	q := WatchQuery{
		Name:       "go-tokyo",
		Keyword:    []string{"Go"},
		Prefecture: []string{"tokyo", "online"},
		YM:         []string{"202410"},
		Count:      100,
	}

	eq, err := q.EventsQuery()
	require.NoError(t, err)

	assert.Equal(t, []connpass.QueryPair{
		{Name: "count", Value: "100"},
		{Name: "keyword", Value: "Go"},
		{Name: "ym", Value: "202410"},
		{Name: "prefecture", Value: "tokyo"},
		{Name: "prefecture", Value: "online"},
	}, eq.Encode())
}
