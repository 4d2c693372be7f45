package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"participation/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLogger_Once(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "stderr"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "stdout"})
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestGetLogger_Default(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	assert.Same(t, slog.Default(), GetLogger())
}

func TestContextHandler_InjectsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx := WithRunID(context.Background(), "run-123")
	ctx, span := tp.Tracer("test").Start(ctx, "op")
	logger.InfoContext(ctx, "with span")
	span.End()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-123", entry["run_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestContextHandler_NoIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	logger.With("component", "loader").WithGroup("g").InfoContext(context.Background(), "plain", "k", 1)

	out := buf.String()
	assert.NotContains(t, out, "run_id")
	assert.NotContains(t, out, "trace_id")
	assert.Contains(t, out, `"component":"loader"`)
	assert.Contains(t, out, `"g":{"k":1}`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestNewHandler_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.LoggingConfig{Level: "warn", Format: "text"}))

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "level=WARN"), out)
}

func TestContextHelpers(t *testing.T) {
	assert.Empty(t, GetRunID(context.Background()))
	//nolint:staticcheck
	assert.Empty(t, GetRunID(nil))

	ctx := EnsureRunID(context.Background())
	id := GetRunID(ctx)
	assert.Len(t, id, 36)

	// existing id is kept
	assert.Equal(t, id, GetRunID(EnsureRunID(ctx)))
	assert.NotEqual(t, GenerateRunID(), GenerateRunID())
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	assert.Same(t, base, WithError(base, nil))

	WithError(WithComponent(base, "cleaner"), errors.New("boom")).Info("failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cleaner", entry["component"])
	assert.Equal(t, "boom", entry["error"])
}
