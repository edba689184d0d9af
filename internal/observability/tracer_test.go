package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// =============================================================================
// TracerConfig Tests
// =============================================================================

func TestDefaultTracerConfig(t *testing.T) {
	t.Run("returns expected defaults", func(t *testing.T) {
		cfg := DefaultTracerConfig()

		assert.False(t, cfg.Enabled)
		assert.Equal(t, "localhost:4317", cfg.Endpoint)
		assert.Equal(t, "bundlescore", cfg.ServiceName)
		assert.Equal(t, "development", cfg.Environment)
		assert.Equal(t, 1.0, cfg.SampleRate)
		assert.True(t, cfg.Insecure)
	})

	t.Run("returns new instance each time", func(t *testing.T) {
		cfg1 := DefaultTracerConfig()
		cfg2 := DefaultTracerConfig()

		cfg1.ServiceName = "modified"
		assert.Equal(t, "bundlescore", cfg2.ServiceName)
	})
}

// =============================================================================
// Tracer Tests
// =============================================================================

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return NewTracerFromProvider(provider), recorder
}

func TestNewTracer_Disabled(t *testing.T) {
	tracer, err := NewTracer(context.Background(), TracerConfig{Enabled: false})
	require.NoError(t, err)

	assert.False(t, tracer.IsEnabled())
	assert.NoError(t, tracer.Shutdown(context.Background()))

	ctx, span := tracer.StartStageSpan(context.Background(), "collect")
	defer span.End()
	assert.False(t, span.IsRecording())
	assert.Empty(t, ExtractTraceID(ctx))
}

func TestTracer_StartStageSpan(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)
	assert.True(t, tracer.IsEnabled())

	ctx, span := tracer.StartStageSpan(context.Background(), "score")
	SetSpanAttributes(ctx, attribute.Float64("bundlescore.score", 9.5))
	assert.NotEmpty(t, ExtractTraceID(ctx))
	EndSpan(span, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "bundlescore.score", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("bundlescore.stage", "score"))
	assert.Contains(t, spans[0].Attributes(), attribute.Float64("bundlescore.score", 9.5))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestEndSpan_RecordsError(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.StartSpan(context.Background(), "run")
	EndSpan(span, errors.New("build directory not found"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "build directory not found", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestSetSpanAttributes_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		SetSpanAttributes(context.Background(), attribute.String("key", "value"))
	})
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}
