package logger

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zerolog.Logger
}

// New builds a console logger writing to stderr. Level comes from the
// CONNECTK_LOG environment variable ("debug", "info", ...), info if unset.
func New() *Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(os.Getenv("CONNECTK_LOG")); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	return &Logger{Logger: log}
}

// NewMiddleware attaches a request-scoped logger to the context and logs
// every finished request
func NewMiddleware(l *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := Logger{l.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), &reqLog)))
			reqLog.Debug().Dur("elapsed", time.Since(start)).Msg("request served")
		})
	}
}

type loggerContextKey string

const contextKeyValue loggerContextKey = "context-logger"

func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKeyValue, l)
}

func FromContext(ctx context.Context) *Logger {
	if l := ctx.Value(contextKeyValue); l != nil {
		return l.(*Logger)
	}

	return New()
}
