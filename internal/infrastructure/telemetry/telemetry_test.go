package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := useRecorder(t)

	ctx, span := StartSpan(context.Background(), "transfer.import", SpanAttrClear, true, 42, "ignored")
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, SpanAttrAdded, 3, SpanAttrCollection, "settings")
	AddEvent(span, "collection.cleared", SpanAttrDeleted, int64(2))
	RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "transfer.import", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Contains(t, s.Attributes(), attribute.Bool(SpanAttrClear, true))
	assert.Contains(t, s.Attributes(), attribute.Int(SpanAttrAdded, 3))
	assert.Contains(t, s.Attributes(), attribute.String(SpanAttrCollection, "settings"))
	require.NotEmpty(t, s.Events())
	assert.Equal(t, "collection.cleared", s.Events()[0].Name)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.String("k", "v"), toAttribute("k", "v"))
	assert.Equal(t, attribute.Int64("k", 5), toAttribute("k", int64(5)))
	assert.Equal(t, attribute.Float64("k", 1.5), toAttribute("k", 1.5))
	assert.Equal(t, attribute.StringSlice("k", []string{"a"}), toAttribute("k", []string{"a"}))
	assert.Equal(t, attribute.String("k", "1s"), toAttribute("k", time.Second))
	assert.Equal(t, attribute.String("k", "[1 2]"), toAttribute("k", []uint{1, 2}))
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", newSampler(0).Description())
	assert.Contains(t, newSampler(0.5).Description(), "TraceIDRatioBased")
}

func TestStart_Disabled(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	p, err := Start(ctx, Config{ServiceName: "storefront"}, log)
	require.NoError(t, err)
	assert.False(t, p.TracesEnabled())
	assert.False(t, p.MetricsEnabled())
	assert.False(t, p.LogsEnabled())
	assert.NotNil(t, p.Tracer("x"))
	assert.NotNil(t, p.Meter("x"))
	assert.Same(t, log, p.Bridge(log, zapcore.InfoLevel))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestProviders_NilSafe(t *testing.T) {
	var p *Providers
	assert.False(t, p.MetricsEnabled())
	assert.NotNil(t, p.Meter("x"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestTransferMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewTransferMetrics(mp.Meter("test"))
	require.NoError(t, err)

	m.RecordAdded(ctx, "settings", 2)
	m.RecordAdded(ctx, "settings", 1)
	m.RecordAdded(ctx, "users", 0)
	m.RecordDeleted(ctx, "users", 4)
	m.RecordError(ctx, "orders")
	m.RecordExported(ctx, "pages", 7)
	m.RecordRun(ctx, "import", "completed", 2*time.Second)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	var histCount uint64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch data := md.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					histCount += dp.Count
				}
			}
		}
	}

	assert.Equal(t, int64(3), sums["transfer.records.added"])
	assert.Equal(t, int64(4), sums["transfer.records.deleted"])
	assert.Equal(t, int64(1), sums["transfer.errors"])
	assert.Equal(t, int64(7), sums["transfer.records.exported"])
	assert.Equal(t, uint64(1), histCount)
}

func TestTransferMetrics_NilSafe(t *testing.T) {
	var m *TransferMetrics
	assert.NotPanics(t, func() {
		m.RecordAdded(context.Background(), "settings", 1)
		m.RecordRun(context.Background(), "export", "completed", time.Second)
	})
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	logger := zap.New(core).With(zap.String("component", "test"))

	logger.Info("dropped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "test", entry.ContextMap()["component"])
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	p := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	assert.NoError(t, p.Register(nil))
}
