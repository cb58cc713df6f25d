package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup initializes the global slog logger with JSON output to stdout,
// mirrored to a rotating file when LOG_FILE is set. The returned handler
// is the console handler, for composing with the database handler.
func Setup(cfg *config.Config) (slog.Handler, io.Closer) {
	var w io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename: cfg.LogFile,
			MaxSize:  cfg.LogMaxSizeMB,
			MaxAge:   cfg.LogRetentionDays,
			Compress: true,
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: levelFor(cfg.AppEnv),
	})
	slog.SetDefault(slog.New(handler))
	return handler, closer
}

func levelFor(env string) slog.Level {
	if env == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
