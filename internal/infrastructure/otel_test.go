package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collectSums gathers every Int64 sum data point by metric name.
func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestOTelInitializationDefaults(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *OTelConfig
		wantErr     bool
		wantTracer  bool
		wantMetrics bool
	}{
		{
			name: "stdout tracing",
			cfg: &OTelConfig{
				ServiceName: "test", ServiceVersion: "v1", Environment: "test",
				TraceExporter: "stdout", EnableTracing: true, SampleRatio: 1,
			},
			wantTracer: true,
		},
		{
			name: "everything disabled",
			cfg: &OTelConfig{
				ServiceName: "test", TraceExporter: "none", MetricExporter: "none",
				EnableTracing: true, EnableMetrics: true,
			},
		},
		{
			name: "prometheus twice in one process",
			cfg: &OTelConfig{
				ServiceName: "test", MetricExporter: "prometheus", EnableMetrics: true,
			},
			wantMetrics: true,
		},
		{
			name:    "unsupported trace exporter",
			cfg:     &OTelConfig{ServiceName: "test", TraceExporter: "jaeger", EnableTracing: true},
			wantErr: true,
		},
		{
			name:    "unsupported metric exporter",
			cfg:     &OTelConfig{ServiceName: "test", MetricExporter: "statsd", EnableMetrics: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, quietLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer providers.Shutdown(context.Background())

			assert.Equal(t, tt.wantTracer, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.MeterProvider != nil)
			assert.NotNil(t, providers.Meter)
		})
	}
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := DefaultOTelConfig()
	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.False(t, cfg.EnableTracing)
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordQueryMetrics(context.Background(), metrics, "tables", "II", 5*time.Millisecond, false, nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fund_queries")
	assert.Contains(t, rec.Body.String(), "fund_query_duration_seconds")
}

func TestCreateBusinessMetricsNoopMeter(t *testing.T) {
	metrics, err := CreateBusinessMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, metrics.QueriesTotal)
	assert.NotNil(t, metrics.HTTPRequestsTotal)

	// recording on a noop meter must not panic
	RecordQueryMetrics(context.Background(), metrics, "controls", "III", time.Millisecond, true, nil)
	RecordQueryMetrics(context.Background(), nil, "controls", "III", time.Millisecond, true, nil)
}

func TestRecordQueryMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	RecordQueryMetrics(ctx, metrics, "tables", "II", time.Millisecond, false, nil)
	RecordQueryMetrics(ctx, metrics, "tables", "II", time.Millisecond, true, nil)
	RecordQueryMetrics(ctx, metrics, "tables", "II", time.Millisecond, true, nil)
	RecordQueryMetrics(ctx, metrics, "tables", "XX", time.Millisecond, false, errors.New("boom"))

	sums := collectSums(t, reader)
	assert.Equal(t, int64(4), sums["fund_queries_total"])
	assert.Equal(t, int64(2), sums["fund_query_cache_hits_total"])
	assert.Equal(t, int64(1), sums["fund_query_cache_misses_total"])
	assert.Equal(t, int64(1), sums["fund_query_errors_total"])
}

func TestTraceIDFromContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))

	// without a span the request trace ID is used
	ctx = WithTraceID(context.Background(), "request-1")
	assert.Equal(t, "request-1", TraceIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "failing")
	RecordError(ctx, assert.AnError)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	require.NotEmpty(t, ended[0].Events())
	assert.Equal(t, "exception", ended[0].Events()[0].Name)

	// no active span: nothing to record on
	RecordError(context.Background(), assert.AnError)
}

func TestSystemMetricsCollector(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	collector, err := NewSystemMetricsCollector(mp.Meter("test"), 10*time.Millisecond)
	require.NoError(t, err)

	stats := collector.GetCurrentStats(context.Background())
	assert.Positive(t, stats.GoRoutines)
	assert.Positive(t, stats.MemorySystem)
	assert.Positive(t, stats.CPUCount)
	assert.False(t, collector.StartTime().After(stats.Timestamp))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		collector.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop when the context ended")
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["system_goroutines"])
	assert.True(t, names["system_uptime_seconds"])
}
