package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gaitlab/gait-service/internal/config"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs a JSON slog logger as the default. When a log path is
// configured, records are also written to a size-rotated file.
func Setup(cfg config.Log) *slog.Logger {
	var out io.Writer = os.Stdout

	if cfg.Path != "" {
		if dir := filepath.Dir(cfg.Path); dir != "" {
			_ = os.MkdirAll(dir, 0o755)
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.Level == "debug",
	}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel accepts debug, info, warn and error. Unknown input means info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
