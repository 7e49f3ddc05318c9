package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroma-labs/connpass-go/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.LoggingConfig
		wantLevel  zerolog.Level
		wantJSON   bool
		wantOutput bool
	}{
		{
			name:       "given json format, then structured output",
			cfg:        config.LoggingConfig{Level: "info", Format: "json"},
			wantLevel:  zerolog.InfoLevel,
			wantJSON:   true,
			wantOutput: true,
		},
		{
			name:       "given console format, then human output",
			cfg:        config.LoggingConfig{Level: "debug", Format: "console", Color: true},
			wantLevel:  zerolog.DebugLevel,
			wantOutput: true,
		},
		{
			name:      "given error level, then info is dropped",
			cfg:       config.LoggingConfig{Level: "error", Format: "json"},
			wantLevel: zerolog.ErrorLevel,
			wantJSON:  true,
		},
		{
			name:       "given unknown level, then info",
			cfg:        config.LoggingConfig{Level: "verbose", Format: "json"},
			wantLevel:  zerolog.InfoLevel,
			wantJSON:   true,
			wantOutput: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.cfg, &buf)

			assert.Equal(t, tt.wantLevel, logger.GetLevel())

			logger.Info().Str("query", "go").Msg("collected")

			if !tt.wantOutput {
				assert.Empty(t, buf.String())
				return
			}
			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"query":"go"`)
				assert.Contains(t, buf.String(), `"message":"collected"`)
			} else {
				assert.Contains(t, buf.String(), "query=go")
				assert.NotContains(t, buf.String(), "\x1b[", "a buffer is not a terminal")
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
