package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/propledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    time.Minute,
		ServiceName:       "propledger-test",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.Equal(t, cfg, mp.GetConfig())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestCounter(t *testing.T) {
	reader, provider := newTestMeter(t)
	ctx := context.Background()

	counter, err := telemetry.NewCounter(provider.Meter("test"), "claims_total", "Claims lodged", "{claim}")
	require.NoError(t, err)

	counter.Inc(ctx, telemetry.AttrFinancialYear.Int(2025))
	counter.Add(ctx, 4, telemetry.AttrFinancialYear.Int(2025))
	counter.Inc(ctx, telemetry.AttrFinancialYear.Int(2026))

	sum, ok := collect(t, reader)["claims_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	totals := map[int64]int64{}
	for _, dp := range sum.DataPoints {
		fy, _ := dp.Attributes.Value(telemetry.AttrFinancialYear)
		totals[fy.AsInt64()] = dp.Value
	}
	assert.Equal(t, map[int64]int64{2025: 5, 2026: 1}, totals)
}

func TestHistogram(t *testing.T) {
	reader, provider := newTestMeter(t)
	ctx := context.Background()

	h, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{
		Name:        "projection_build_seconds",
		Description: "Projection build time",
		Unit:        "s",
		Boundaries:  telemetry.SmallDurationBuckets,
	})
	require.NoError(t, err)

	h.RecordDuration(ctx, 2*time.Millisecond)
	h.Record(ctx, 0.2)

	hist, ok := collect(t, reader)["projection_build_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	dp := hist.DataPoints[0]
	assert.EqualValues(t, 2, dp.Count)
	assert.InDelta(t, 0.202, dp.Sum, 1e-9)
	assert.Equal(t, telemetry.SmallDurationBuckets, dp.Bounds)
}

func TestGauges(t *testing.T) {
	reader, provider := newTestMeter(t)
	ctx := context.Background()
	meter := provider.Meter("test")

	g, err := telemetry.NewGauge(meter, "open_connections", "Open connections", "{connection}")
	require.NoError(t, err)
	fg, err := telemetry.NewFloatGauge(meter, "cache_hit_ratio", "Cache hit ratio", "1")
	require.NoError(t, err)

	g.Record(ctx, 3)
	g.Record(ctx, 7)
	fg.Record(ctx, 0.75)

	data := collect(t, reader)
	gauge, ok := data["open_connections"].(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.EqualValues(t, 7, gauge.DataPoints[0].Value)

	ratio, ok := data["cache_hit_ratio"].(metricdata.Gauge[float64])
	require.True(t, ok)
	assert.Equal(t, 0.75, ratio.DataPoints[0].Value)
}

func TestAttributeKeys(t *testing.T) {
	assert.Equal(t, "owner_id", string(telemetry.AttrOwnerID))
	assert.Equal(t, "property_id", string(telemetry.AttrPropertyID))
	assert.Equal(t, "http.route", string(telemetry.AttrHTTPRoute))
	assert.Equal(t, "db.operation", string(telemetry.AttrDBOperation))
	assert.Equal(t, "financial_year", string(telemetry.AttrFinancialYear))
	assert.Equal(t, "cache.result", string(telemetry.AttrCacheResult))
}
