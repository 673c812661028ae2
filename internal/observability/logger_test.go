package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/psdplots/plot-catalog-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keepDefaultLogger(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestNewLogger_Level(t *testing.T) {
	keepDefaultLogger(t)

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.in})
			assert.Equal(t, tt.want, enabledLevel(logger.Handler()))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("thumbnail resolved", "path", "HL/ATH", "tier", "hhz_full")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "thumbnail resolved", rec["msg"])
	assert.Equal(t, "HL/ATH", rec["path"])
	assert.Equal(t, "hhz_full", rec["tier"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelDebug, "text")

	logger.Debug("scan", "files", 3)

	assert.Contains(t, buf.String(), "msg=scan")
	assert.Contains(t, buf.String(), "files=3")
}

func TestNewLogger_WritesLogFile(t *testing.T) {
	keepDefaultLogger(t)
	path := filepath.Join(t.TempDir(), "catalog.log")
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "json", LogFile: path})

	assert.Same(t, logger, slog.Default())
	assert.Equal(t, slog.LevelWarn, enabledLevel(logger.Handler()))

	logger.Warn("catalog ready")

	assert.FileExists(t, path)
}

func TestNewLogger_SetsDefault(t *testing.T) {
	keepDefaultLogger(t)
	logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "text"})
	assert.Same(t, logger, slog.Default())
}

func TestNewMetricsForTesting_Unregistered(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()

	require.NoError(t, reg.Register(m.ScansTotal))
	require.NoError(t, reg.Register(m.ThumbnailCache))

	m.ThumbnailCache.WithLabelValues("hit").Inc()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
