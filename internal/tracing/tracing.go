// Package tracing wires OpenTelemetry spans into the process logger.
package tracing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const TracerName = "github.com/habiliai/spoar"

// NewTracerProvider returns a provider whose spans are logged when they
// end. Attribute values longer than 256 bytes are dropped unless verbose.
func NewTracerProvider(logger *slog.Logger, verbose bool) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(&loggingSpanProcessor{
			verbose: verbose,
			logger:  logger,
		}),
	)
}

// Noop returns a tracer that records nothing.
func Noop() trace.Tracer {
	return noop.NewTracerProvider().Tracer(TracerName)
}

type loggingSpanProcessor struct {
	verbose bool
	logger  *slog.Logger
}

var _ sdktrace.SpanProcessor = (*loggingSpanProcessor)(nil)

func (l *loggingSpanProcessor) OnStart(ctx context.Context, s sdktrace.ReadWriteSpan) {}

func (l *loggingSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	args := l.buildArgs(s)
	if s.Status().Code == codes.Error {
		l.logger.Warn("span failed", append(args, slog.String("error", s.Status().Description))...)
		return
	}
	l.logger.Debug("span end", args...)
}

func (l *loggingSpanProcessor) Shutdown(ctx context.Context) error {
	return nil
}

func (l *loggingSpanProcessor) ForceFlush(ctx context.Context) error {
	return nil
}

func (l *loggingSpanProcessor) buildArgs(s sdktrace.ReadOnlySpan) []any {
	args := []any{
		slog.String("span", s.Name()),
		slog.Duration("duration", s.EndTime().Sub(s.StartTime())),
	}
	for _, attr := range s.Attributes() {
		value := attr.Value.Emit()
		if !l.verbose && len(value) > 256 {
			continue
		}
		args = append(args, slog.String(string(attr.Key), value))
	}
	return args
}
