package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
)

func TestLogLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{" INFO ", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"", LogLevelWarn},
		{"verbose", LogLevelWarn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LogLevelFromString(tt.in), tt.in)
	}
}

func TestLogger_FiltersBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogLevelWarn, &buf)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)
	assert.Equal(t, "WARN: shown 3\nERROR: shown 4\n", buf.String())

	buf.Reset()
	l.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, l.GetLevel())
	l.Debug("now visible")
	assert.Equal(t, "DEBUG: now visible\n", buf.String())
}

func TestInitializeLoggers_RoutesAppLayer(t *testing.T) {
	var buf bytes.Buffer
	bridge := InitializeLoggers(NewLogger(LogLevelInfo, &buf))
	defer app.SetLogger(app.NopLogger{})

	bridge.Info("from bridge")
	app.GetLogger().Warn("from app layer")
	app.GetLogger().Debug("filtered")

	assert.Equal(t, "INFO: from bridge\nWARN: from app layer\n", buf.String())
}
