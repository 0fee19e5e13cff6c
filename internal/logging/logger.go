package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var logger zerolog.Logger

// Init configures the process-wide logger. Every entry carries the service
// name; development mode writes human-readable console output with caller
// information, production writes JSON lines.
func Init(serviceName string, isDevelopment bool) {
	logger = newLogger(os.Stdout, serviceName, isDevelopment)
}

func newLogger(out io.Writer, serviceName string, isDevelopment bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if isDevelopment {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lc := zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName)
	if isDevelopment {
		lc = lc.Caller()
	}
	return lc.Logger()
}

func Logger() *zerolog.Logger {
	return &logger
}

// WithContext returns the base logger enriched with the identifiers of the
// span recording the current request, when there is one.
func WithContext(ctx context.Context) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}

	return logger.With().
		Str("trace_id", span.SpanContext().TraceID().String()).
		Str("span_id", span.SpanContext().SpanID().String()).
		Logger()
}

func Info(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Info()
}

func Error(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Error()
}

func Debug(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Debug()
}

func Warn(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Warn()
}
