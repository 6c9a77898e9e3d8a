// Package logger builds the process-wide slog.Logger.
//
// Development: text output at Debug level.
// Otherwise: JSON output at Info level.
// With a Sentry DSN, Error records are also forwarded to Sentry.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Logger is the configured logger plus the hook to flush buffered Sentry events.
type Logger struct {
	*slog.Logger
	sentry bool
}

// New writes to stdout. See NewWithWriter.
func New(dev bool, sentryDSN string) (*Logger, error) {
	return NewWithWriter(os.Stdout, dev, sentryDSN)
}

func NewWithWriter(w io.Writer, dev bool, sentryDSN string) (*Logger, error) {
	var handlers []slog.Handler
	if dev {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	withSentry := false
	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			AttachStacktrace: true,
		})
		if err != nil {
			return nil, fmt.Errorf("logger: initialising sentry: %w", err)
		}
		handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		withSentry = true
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	return &Logger{Logger: slog.New(handler), sentry: withSentry}, nil
}

// Flush waits for queued Sentry events. Call it before the process exits.
func (l *Logger) Flush() {
	if l.sentry {
		sentry.Flush(2 * time.Second)
	}
}
