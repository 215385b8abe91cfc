package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
)

// Logger represents application logger.
type Logger struct {
	*slog.Logger
}

// New creates new Logger instance with the specified level.
func New(level int) *Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter creates a Logger writing text records to w.
func NewWithWriter(w io.Writer, level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// Fatal is equivalent to Error followed by os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}

// LogError logs err at error level. For oops errors anywhere in the chain the
// code and context are logged as separate attributes.
func (l *Logger) LogError(msg string, err error, args ...any) {
	attrs := append([]any{}, args...)
	attrs = append(attrs, "error", err.Error())

	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
	}
	l.Logger.Error(msg, attrs...)
}
