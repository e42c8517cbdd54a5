package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Logger wraps slog.Logger with the fields this service attaches often.
type Logger struct {
	*slog.Logger
}

// New builds a logger writing to stdout. format is "json" or anything else
// for colored console output.
func New(level, format string) *Logger {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(w io.Writer, level, format string) *Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.TimeOnly,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithBatchID adds batch_id to every record.
func (l *Logger) WithBatchID(batchID string) *Logger {
	return &Logger{Logger: l.With("batch_id", batchID)}
}

// WithUserID adds user_id to every record.
func (l *Logger) WithUserID(userID int64) *Logger {
	return &Logger{Logger: l.With("user_id", userID)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
