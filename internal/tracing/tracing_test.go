package tracing_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/habiliai/spoar/internal/mylog"
	"github.com/habiliai/spoar/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestSpansAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := mylog.NewLoggerTo(&buf, "debug", "json")

	tp := tracing.NewTracerProvider(logger, false)
	defer func() {
		require.NoError(t, tp.Shutdown(context.Background()))
	}()
	tracer := tp.Tracer(tracing.TracerName)

	_, span := tracer.Start(context.Background(), "spoar.plan")
	span.SetAttributes(
		attribute.String("tool", "calculate"),
		attribute.String("prompt", strings.Repeat("x", 300)),
	)
	span.End()

	_, failed := tracer.Start(context.Background(), "spoar.act")
	failed.SetStatus(codes.Error, "tool not found")
	failed.End()

	out := buf.String()
	assert.Contains(t, out, `"span":"spoar.plan"`)
	assert.Contains(t, out, `"tool":"calculate"`)
	assert.NotContains(t, out, strings.Repeat("x", 300))
	assert.Contains(t, out, `"msg":"span failed"`)
	assert.Contains(t, out, `"error":"tool not found"`)
}
