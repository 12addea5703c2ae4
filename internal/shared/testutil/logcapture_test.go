package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, handler := NewTestLogger()
	stepLogger := logger.With(slog.String("step", "clean"))

	stepLogger.Info("Dataset cleaned", slog.Int("rows", 3))
	logger.WithGroup("export").Warn("Slow write", slog.String("file", "a.csv"))

	records := handler.Records()
	require.Len(t, records, 2)

	r := RequireLog(t, handler, slog.LevelInfo, "cleaned")
	step, ok := r.Attr("step")
	require.True(t, ok)
	assert.Equal(t, "clean", step)
	rows, _ := r.Attr("rows")
	assert.Equal(t, int64(3), rows)

	w := RequireLog(t, handler, slog.LevelWarn, "Slow write")
	file, ok := w.Attr("export.file")
	assert.True(t, ok)
	assert.Equal(t, "a.csv", file)

	_, found := handler.Find(slog.LevelError, "cleaned")
	assert.False(t, found)
	AssertNoErrors(t, handler)
}
