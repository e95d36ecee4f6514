package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewEngineMetrics(t *testing.T) {
	em, err := telemetry.NewEngineMetrics(telemetry.EngineMetricsConfig{
		Meter:  noop.NewMeterProvider().Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	require.NotNil(t, em)
}

func TestNewEngineMetrics_NilMeter(t *testing.T) {
	em, err := telemetry.NewEngineMetrics(telemetry.EngineMetricsConfig{})
	require.Error(t, err)
	assert.Nil(t, em)
	assert.Equal(t, "NewEngineMetrics: meter cannot be nil", err.Error())
}

func TestEngineMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	em, err := telemetry.NewEngineMetrics(telemetry.EngineMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	ctx := context.Background()
	owner := uuid.New()
	em.RecordReconciliation(ctx, 5, 4, 2)
	em.RecordClaims(ctx, owner, 2025, 3, decimal.RequireFromString("2150.55"))
	em.RecordPoolMove(ctx, owner)
	em.RecordSale(ctx, owner, true)
	em.RecordProjectionCache(ctx, true)
	em.RecordProjectionCache(ctx, false)
	em.RecordProjectionBuild(ctx, 3*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	sums := make(map[string]int64)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}

	assert.Equal(t, int64(5), sums["propledger_reconciliation_candidates_total"])
	assert.Equal(t, int64(2), sums["propledger_reconciliation_discrepancies_total"])
	assert.Equal(t, int64(3), sums["propledger_depreciation_claims_total"])
	assert.Equal(t, int64(215055), sums["propledger_depreciation_claim_amount_total"])
	assert.Equal(t, int64(1), sums["propledger_low_value_pool_moves_total"])
	assert.Equal(t, int64(1), sums["propledger_property_sales_total"])
	assert.Equal(t, int64(2), sums["propledger_projection_cache_lookups_total"])
}
