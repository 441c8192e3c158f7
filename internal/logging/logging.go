package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init installs the default slog logger. LOG_LEVEL picks the level and
// LOG_FILE, when set, sends output to a size-rotated file instead of stderr.
func Init(defaultLevel slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(output(), &slog.HandlerOptions{
		Level: levelFromEnv(defaultLevel),
	}))
	slog.SetDefault(logger)
	return logger
}

func levelFromEnv(level slog.Level) slog.Level {
	if l, ok := os.LookupEnv("LOG_LEVEL"); ok {
		switch l {
		case "dev", "development", "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn", "warning":
			level = slog.LevelWarn
		case "error", "production", "prod":
			level = slog.LevelError
		}
	}
	return level
}

func output() io.Writer {
	path := os.Getenv("LOG_FILE")
	if path == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}
