package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/propledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func newMetricsRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(HTTPMetricsWithMeter(mp.Meter("test"), zaptest.NewLogger(t)))
	r.GET("/properties/:id/depreciation", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	r.POST("/properties/:id/cgt/sale", func(c *gin.Context) {
		c.Status(http.StatusUnprocessableEntity)
	})
	return r, reader
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestHTTPMetrics_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMetrics(nil, nil))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{}, nil)
	require.NoError(t, err)
	r = gin.New()
	r.Use(HTTPMetrics(mp, nil))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_RecordsByRoutePattern(t *testing.T) {
	r, reader := newMetricsRouter(t)

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties/"+id+"/depreciation", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/properties/a/cgt/sale", strings.NewReader(`{"sale_price":"1"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	m := findMetric(t, reader, "http_server_request_total")
	require.NotNil(t, m)
	byRoute := map[string]int64{}
	outcomes := map[string]int64{}
	for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
		route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
		outcome, _ := dp.Attributes.Value(telemetry.AttrOutcome)
		byRoute[route.AsString()] += dp.Value
		outcomes[outcome.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{
		"/properties/:id/depreciation": 3,
		"/properties/:id/cgt/sale":     1,
		"unknown":                      1,
	}, byRoute)
	assert.Equal(t, map[string]int64{"2xx": 3, "4xx": 2}, outcomes)

	dur := findMetric(t, reader, "http_server_request_duration_seconds")
	require.NotNil(t, dur)
	var count uint64
	for _, dp := range dur.Data.(metricdata.Histogram[float64]).DataPoints {
		count += dp.Count
	}
	assert.EqualValues(t, 5, count)

	assert.NotNil(t, findMetric(t, reader, "http_server_request_size_bytes"))
	assert.NotNil(t, findMetric(t, reader, "http_server_response_size_bytes"))

	active := findMetric(t, reader, "http_server_active_requests")
	require.NotNil(t, active)
	for _, dp := range active.Data.(metricdata.Sum[int64]).DataPoints {
		assert.Zero(t, dp.Value)
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "3xx", statusClass(304))
	assert.Equal(t, "4xx", statusClass(429))
	assert.Equal(t, "5xx", statusClass(503))
	assert.Equal(t, "other", statusClass(101))
}
