package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zapcore"
)

func TestNewHandler_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewHandler(WithWriter(&buf), WithLevel(slog.LevelInfo)))

	logger.Debug("hidden")
	logger.Info("Enrollment changed", "activity", "Chess Club", "participants", 3)

	line := buf.String()
	require.True(t, gjson.Valid(line), "expected a JSON record, got %q", line)
	assert.Equal(t, "Enrollment changed", gjson.Get(line, "msg").String())
	assert.Equal(t, "info", gjson.Get(line, "level").String())
	assert.Equal(t, "Chess Club", gjson.Get(line, "activity").String())
	assert.Equal(t, int64(3), gjson.Get(line, "participants").Int())
	assert.True(t, gjson.Get(line, "time").Exists())
	assert.NotContains(t, line, "hidden")
}

func TestNewHandler_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewHandler(WithWriter(&buf), WithFormat(FormatConsole), WithLevel(slog.LevelDebug)))
	logger.Debug("Enrollment request rejected", "outcome", "full")

	assert.Contains(t, buf.String(), "Enrollment request rejected")
	assert.False(t, gjson.Valid(buf.String()))
}

func TestNewHandler_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewHandler(WithWriter(&buf), WithLevel(slog.LevelWarn)))

	logger.Info("quiet")
	assert.Zero(t, buf.Len())

	logger.Warn("loud")
	assert.Equal(t, "warn", gjson.Get(buf.String(), "level").String())
}

func TestZapLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zapcore.DebugLevel, ZapLevel(slog.LevelDebug))
	assert.Equal(t, zapcore.InfoLevel, ZapLevel(slog.LevelInfo))
	assert.Equal(t, zapcore.WarnLevel, ZapLevel(slog.LevelWarn))
	assert.Equal(t, zapcore.ErrorLevel, ZapLevel(slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "INFO", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
		{input: "warning", expected: slog.LevelWarn},
		{input: " warn ", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "verbose", expected: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}
