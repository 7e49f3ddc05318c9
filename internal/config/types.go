package config

import "time"

// Config is the complete CLI configuration.
type Config struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Debug     bool          `mapstructure:"debug"`
	Output    string        `mapstructure:"output"`
	Logging   LoggingConfig `mapstructure:"logging"`
	Watch     WatchConfig   `mapstructure:"watch"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// WatchConfig configures the `watch` exporter.
type WatchConfig struct {
	// Schedule is a standard five-field cron expression.
	Schedule   string `mapstructure:"schedule"`
	ListenAddr string `mapstructure:"listen_addr"`

	// MaxAttempts bounds tries per query per run, first attempt included.
	MaxAttempts       int     `mapstructure:"max_attempts"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	Queries []WatchQuery `mapstructure:"queries"`
}

// WatchQuery is one named event search exported as its own series.
type WatchQuery struct {
	Name       string   `mapstructure:"name"`
	Keyword    []string `mapstructure:"keyword"`
	KeywordOr  []string `mapstructure:"keyword_or"`
	Prefecture []string `mapstructure:"prefecture"`
	Subdomain  []string `mapstructure:"subdomain"`
	YM         []string `mapstructure:"ym"`
	Count      int      `mapstructure:"count"`
}
