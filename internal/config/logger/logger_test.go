package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesswatch/internal/config"
)

func Test_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		format   string
		expected zerolog.Level
	}{
		{name: "Default", level: config.DefaultLogLevel, format: config.DefaultLogFormat, expected: zerolog.WarnLevel},
		{name: "Debug level", level: DebugLevel, format: ConsoleFormat, expected: zerolog.DebugLevel},
		{name: "Info level and json format", level: InfoLevel, format: JSONFormat, expected: zerolog.InfoLevel},
		{name: "Empty level", level: "", format: "", expected: zerolog.WarnLevel},
		{name: "Unknown format", level: ErrorLevel, format: "unknown", expected: zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Logging.Level = tt.level
			cfg.Logging.Format = tt.format

			logger := NewLogger(cfg)
			require.NotNil(t, logger)

			appLogger, ok := logger.(*AppLogger)
			require.True(t, ok)

			assert.Equal(t, tt.expected, appLogger.log.GetLevel())
		})
	}
}

func Test_NewLoggerWithOutput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = DebugLevel

	var buf bytes.Buffer

	log := NewLoggerWithOutput(cfg, &buf)
	log.Debug().Msg("debug message")

	assert.Contains(t, buf.String(), "debug message")
}

func Test_Logger_LevelFiltering(t *testing.T) {
	cfg := config.DefaultConfig()

	var buf bytes.Buffer

	log := NewLoggerWithOutput(cfg, &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func Test_Logger_WithComponent(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = InfoLevel

	var buf bytes.Buffer

	log := NewLoggerWithOutput(cfg, &buf).WithComponent("SCHEDULER")
	log.Info().Msg("armed")

	assert.Contains(t, buf.String(), `"component":"SCHEDULER"`)
	assert.Contains(t, buf.String(), "armed")
}

func Test_getLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{TraceLevel, zerolog.TraceLevel},
		{DebugLevel, zerolog.DebugLevel},
		{InfoLevel, zerolog.InfoLevel},
		{WarnLevel, zerolog.WarnLevel},
		{ErrorLevel, zerolog.ErrorLevel},
		{"unknown", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, getLogLevel(tt.level))
		})
	}
}

func Test_newConsoleWriter(t *testing.T) {
	var buf bytes.Buffer

	log := zerolog.New(newConsoleWriter(&buf)).With().Str("component", "BUILDER").Logger()
	log.Warn().Msg("superseded")

	assert.Contains(t, buf.String(), "[BUILDER]")
	assert.Contains(t, buf.String(), "superseded")
}
