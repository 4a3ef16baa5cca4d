package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mergington/activities-api/internal/logging"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		prefixed string
		plain    string
		want     slog.Level
	}{
		{name: "unset", want: slog.LevelInfo},
		{name: "prefixed debug", prefixed: "debug", want: slog.LevelDebug},
		{name: "plain fallback", plain: "error", want: slog.LevelError},
		{name: "prefixed wins", prefixed: "warn", plain: "debug", want: slog.LevelWarn},
		{name: "invalid", prefixed: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ACTIVITIES_LOG_LEVEL", tt.prefixed)
			t.Setenv("LOG_LEVEL", tt.plain)

			assert.Equal(t, tt.want, getLogLevel())
		})
	}
}

func TestGetLogFormat(t *testing.T) {
	t.Setenv("ACTIVITIES_LOG_FORMAT", "")
	assert.Equal(t, logging.FormatJSON, getLogFormat())

	t.Setenv("ACTIVITIES_LOG_FORMAT", "Console")
	assert.Equal(t, logging.FormatConsole, getLogFormat())
}

func TestTraceHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(&traceHandler{Handler: logging.NewHandler(logging.WithWriter(&buf))})

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "signup")
	defer span.End()

	logger.With("component", "test").InfoContext(ctx, "Enrollment changed")
	logger.InfoContext(context.Background(), "No span")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	first := string(lines[0])
	assert.Equal(t, span.SpanContext().TraceID().String(), gjson.Get(first, "trace_id").String())
	assert.Equal(t, span.SpanContext().SpanID().String(), gjson.Get(first, "span_id").String())
	assert.Equal(t, "test", gjson.Get(first, "component").String())

	assert.False(t, gjson.Get(string(lines[1]), "trace_id").Exists())
}
