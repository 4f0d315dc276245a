package observability

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLevel(" WARN "))
	require.Equal(t, slog.LevelInfo, parseLevel(""))
	require.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestNewLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.log")
	t.Setenv("LOG_FILE", path)
	t.Setenv("LOG_FILE_MAX_MB", "not-a-number")

	logger, closer := newLogger()
	logger.Info("sale created", slog.String("sale.id", "abc"))
	require.NoError(t, closer.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"msg":"sale created"`)
	require.Contains(t, string(contents), `"sale.id":"abc"`)
	require.Equal(t, 100, envInt("LOG_FILE_MAX_MB", 100))
}

func TestTraceHandler_AddsSpanIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	logger.InfoContext(context.Background(), "no span")
	require.NotContains(t, buf.String(), "trace_id")

	provider := sdktrace.NewTracerProvider()
	ctx, span := provider.Tracer("test").Start(context.Background(), "CreateSale")
	defer span.End()
	logger.With(slog.String("tenant.id", "t1")).InfoContext(ctx, "sale created")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], `"trace_id":"`+span.SpanContext().TraceID().String()+`"`)
	require.Contains(t, lines[1], `"tenant.id":"t1"`)
}

func TestNewSampler(t *testing.T) {
	require.Contains(t, newSampler("").Description(), "AlwaysOnSampler")
	require.Contains(t, newSampler("1.5").Description(), "AlwaysOnSampler")
	require.Contains(t, newSampler("0.25").Description(), "TraceIDRatioBased{0.25}")
}
