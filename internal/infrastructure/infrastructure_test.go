package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
)

func TestInitializeLogger_FileOutput(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, slog.Default())

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "test message", slog.String("key", "value"))
	logger.DebugContext(ctx, "filtered out")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "run-123", entry["run_id"])
}

func TestInitializeLogger_Once(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRunHandler_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewRunHandler(newFormatHandler("text", &buf, nil)))

	logger.InfoContext(WithRunID(context.Background(), "abc"), "hello")
	logger.With("stage", "ingest").WithGroup("g").InfoContext(context.Background(), "no run")

	out := buf.String()
	assert.Contains(t, out, "run_id=abc")
	assert.Contains(t, out, "stage=ingest")
	assert.Equal(t, 1, strings.Count(out, "run_id="))
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
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestRunID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))

	ctx = EnsureRunID(ctx)
	id := GetRunID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetRunID(EnsureRunID(ctx)), "existing run id is kept")
}

func TestInitializeOTel_NoTracing(t *testing.T) {
	ctx := context.Background()
	providers, err := InitializeOTel(ctx, config.TelemetryConfig{TraceExporter: "none"}, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Registry)

	_, span := providers.Tracer.Start(ctx, "noop")
	assert.False(t, span.IsRecording())
	span.End()

	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(context.Background(), config.TelemetryConfig{TraceExporter: "jaeger"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestInitializeOTel_FileExportersAndMetrics(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TelemetryConfig{
		TraceExporter: "file",
		TraceFile:     filepath.Join(dir, "trace.json"),
		MetricsFile:   filepath.Join(dir, "metrics", "pipeline.prom"),
	}
	ctx := WithRunID(context.Background(), "run-1")

	providers, err := InitializeOTel(ctx, cfg, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	counter, err := providers.Meter.Int64Counter("pipeline_rows_ingested_total")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	spanCtx, span := providers.Tracer.Start(ctx, "ingest")
	RecordError(spanCtx, assert.AnError)
	span.End()

	require.NoError(t, providers.Shutdown(ctx))

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "pipeline_rows_ingested_total")

	traces, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(traces), `"Name":"ingest"`)
}
