package util

import (
	"io"
	"log/slog"
	"time"
)

// Trace 用法: defer util.Trace("remove background")()
func Trace(msg string) func() {
	start := time.Now()
	slog.Debug("start", "step", msg)
	return func() {
		slog.Debug("done", "step", msg, "elapsed", time.Since(start))
	}
}

// SetupLogger 文本日志写到 w，verbose 时输出 debug
func SetupLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
