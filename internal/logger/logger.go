package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

// Init initializes the global logger based on environment.
// Development: text format with Debug level.
// Everything else: JSON format with Info level.
// When sentryDSN is set, error records are also forwarded to Sentry.
// The returned func flushes buffered Sentry events and must be called on shutdown.
func Init(env string, sentryDSN string) func() {
	Log = slog.New(newHandler(os.Stdout, env, sentryDSN))
	slog.SetDefault(Log)

	if sentryDSN == "" {
		return func() {}
	}
	return func() { sentry.Flush(2 * time.Second) }
}

func newHandler(w io.Writer, env string, sentryDSN string) slog.Handler {
	var handlers []slog.Handler

	if env == "development" {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         sentryDSN,
			Environment: env,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	if len(handlers) == 1 {
		return handlers[0]
	}
	return slogmulti.Fanout(handlers...)
}
