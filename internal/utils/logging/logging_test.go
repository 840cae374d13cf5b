package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gaitlab/gait-service/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestSetupWritesRotatedFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	path := filepath.Join(t.TempDir(), "logs", "gait.log")
	logger := Setup(config.Log{Level: "info", Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})

	logger.Debug("hidden")
	logger.Info("video deleted", slog.Int64("video_id", 7))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"video deleted"`) || !strings.Contains(out, `"video_id":7`) {
		t.Fatalf("unexpected log output %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatal("debug records should be filtered at info level")
	}
}
