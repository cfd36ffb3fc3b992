package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"error", slog.LevelError},
		{"warn", slog.LevelWarn},
		{"", slog.LevelWarn},
		{"loud", slog.LevelWarn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestSetupLogger_FiltersBelowLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupLogger(&buf, "warn")
	logger.Debug("hidden")
	logger.Warn("shown", "path", "test/t1.norn")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "path=test/t1.norn")
	assert.NotContains(t, out, "source=", "source locations are only attached at debug level")
}

func TestSetupLogger_DebugAddsShortSource(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	WithComponent(SetupLogger(&buf, "debug"), "runner").Debug("spawn")

	out := buf.String()
	assert.Contains(t, out, "component=runner")
	assert.Contains(t, out, "source=")
	assert.Contains(t, out, "logging_test.go")
}

func TestShortenPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "internal/history/history.go", shortenPath("/home/u/src/jitcheck/internal/history/history.go"))
	assert.Equal(t, "pkg/runner.(*Runner).Run", shortenPath("github.com/dkoosis/jitcheck/pkg/runner.(*Runner).Run"))
	assert.Equal(t, "main.go", shortenPath("/tmp/main.go"))
}
