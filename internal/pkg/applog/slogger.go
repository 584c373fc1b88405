package applog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// LevelTrace sits below slog.LevelDebug and is used for per-record publish logs.
const LevelTrace = slog.Level(-8)

// AppLogger is the logging surface used across adapters and use cases.
type AppLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
	Trace(msg string, args ...any)
	Fatal(msg string, args ...any)
}

// DefaultLogger wraps slog.Logger and implements AppLogger.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewAppDefaultLogger creates a stdout logger whose level is read from log.level.
func NewAppDefaultLogger() *DefaultLogger {
	return NewAppLogger(os.Stdout, viper.GetString("log.level"))
}

// NewAppLogger creates a text logger writing to w at the given level name.
func NewAppLogger(w io.Writer, level string) *DefaultLogger {
	return &DefaultLogger{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level), AddSource: false})),
	}
}

// With returns a logger that adds the given attributes to every entry.
func (l *DefaultLogger) With(args ...any) *DefaultLogger {
	return &DefaultLogger{logger: l.logger.With(args...)}
}

func (l *DefaultLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args)
}

func (l *DefaultLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args)
}

func (l *DefaultLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args)
}

func (l *DefaultLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args)
}

func (l *DefaultLogger) Trace(msg string, args ...any) {
	l.log(LevelTrace, msg, args)
}

func (l *DefaultLogger) Fatal(msg string, args ...any) {
	l.log(slog.LevelError, msg, args)
	os.Exit(1)
}

func (l *DefaultLogger) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	// skip log and the exported wrapper
	if src := callerSource(2); src != "" {
		args = append([]any{"source", src}, args...)
	}
	l.logger.Log(ctx, level, msg, args...)
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func parseLogLevel(s string) slog.Level {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
