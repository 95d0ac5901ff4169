package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	EMPTY   = ""
	DEBUG   = "debug"
	INFO    = "info"
	WARN    = "warn"
	ERROR   = "error"
	JSON    = "json"
	TEXT    = "text"
	SERVICE = "service"

	CORRELATION_ID = "correlation_id"
	REQUEST_ID     = "request_id"
	COMPONENT      = "component"
)

type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     string
	Format    string
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Format == EMPTY {
		cfg.Format = JSON
	}
	if cfg.Level == EMPTY {
		cfg.Level = INFO
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}
	if cfg.Format == JSON {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	if cfg.Service != EMPTY {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String(SERVICE, cfg.Service),
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel maps LOG_LEVEL values onto slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case DEBUG:
		return slog.LevelDebug, nil
	case INFO, EMPTY:
		return slog.LevelInfo, nil
	case WARN:
		return slog.LevelWarn, nil
	case ERROR:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// Fatal logs a critical error and exits the application with status code 1
// Use this for unrecoverable errors that prevent the application from starting or continuing
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

// WithCorrelation returns a child logger that tags every record with the saga correlation id.
func (l *Logger) WithCorrelation(correlationID string) *Logger {
	return &Logger{Logger: l.With(CORRELATION_ID, correlationID)}
}

func (l *Logger) WithRequest(requestID string) *Logger {
	return &Logger{Logger: l.With(REQUEST_ID, requestID)}
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With(COMPONENT, component)}
}

// KV adapts the logger to the printf-free key/value callback used by the kafka config.
func (l *Logger) KV(msg string, keysAndValues ...interface{}) {
	l.Info(msg, keysAndValues...)
}
