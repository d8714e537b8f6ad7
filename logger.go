package dbevolve

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
)

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Logger is the sink migration progress is reported to.
type Logger interface {
	Log(level Level, msg string)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(level Level, msg string)

func (f LoggerFunc) Log(level Level, msg string) { f(level, msg) }

type nopLogger struct{}

func (nopLogger) Log(Level, string) {}

// NopLogger discards everything. It is the default.
var NopLogger Logger = nopLogger{}

type zapLogger struct {
	log *zap.SugaredLogger
}

// NewZapLogger routes messages to a zap logger.
func NewZapLogger(log *zap.SugaredLogger) Logger {
	if log == nil {
		return NopLogger
	}
	return &zapLogger{log: log}
}

func (z *zapLogger) Log(level Level, msg string) {
	switch level {
	case LevelDebug:
		z.log.Debug(msg)
	case LevelWarn:
		z.log.Warn(msg)
	case LevelError:
		z.log.Error(msg)
	default:
		z.log.Info(msg)
	}
}

type slogLogger struct {
	log *slog.Logger
}

// NewSlogLogger routes messages to a slog logger.
func NewSlogLogger(log *slog.Logger) Logger {
	if log == nil {
		return NopLogger
	}
	return &slogLogger{log: log}
}

func (s *slogLogger) Log(level Level, msg string) {
	var l slog.Level
	switch level {
	case LevelDebug:
		l = slog.LevelDebug
	case LevelWarn:
		l = slog.LevelWarn
	case LevelError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	s.log.Log(context.Background(), l, msg)
}
