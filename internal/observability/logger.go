package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/psdplots/plot-catalog-service/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the service logger from LOG_LEVEL, LOG_FORMAT and LOG_FILE
// and sets it as the slog default. When a log file is configured, records go
// to both stdout and a rotating file.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogFile == "" {
		return logger
	}

	// The shared logger writes to stdout only, so the file sink gets its own
	// handler at the level the shared logger resolved.
	w := io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    128, // megabytes
		MaxBackups: 5,
		MaxAge:     16, // days
	})
	logger = newLogger(w, enabledLevel(logger.Handler()), cfg.LogFormat)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// enabledLevel returns the lowest standard level h accepts.
func enabledLevel(h slog.Handler) slog.Level {
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if h.Enabled(context.Background(), l) {
			return l
		}
	}
	return slog.LevelError
}
