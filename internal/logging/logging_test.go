package logging

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestLevelFromEnv(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"prod":    slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for env, want := range cases {
		t.Setenv("LOG_LEVEL", env)
		assert.Equal(t, want, levelFromEnv(slog.LevelInfo), env)
	}
}

func TestOutput(t *testing.T) {
	t.Setenv("LOG_FILE", "")
	assert.Equal(t, os.Stderr, output())

	t.Setenv("LOG_FILE", t.TempDir()+"/quickshare.log")
	_, ok := output().(*lumberjack.Logger)
	assert.True(t, ok)
}
