package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/propledger/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func serverSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range sr.Ended() {
		if s.SpanKind() == trace.SpanKindServer {
			return s
		}
	}
	t.Fatal("no server span recorded")
	return nil
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracing_SkipsHealth(t *testing.T) {
	sr := setupTestTracer(t)
	r := gin.New()
	r.Use(Tracing("propledger-test"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestSpanEnricher(t *testing.T) {
	sr := setupTestTracer(t)
	owner := uuid.New()

	r := gin.New()
	r.Use(RequestID(), Tracing("propledger-test"))
	r.Use(func(c *gin.Context) {
		c.Set(logger.GinOwnerIDKey, owner.String())
		c.Next()
	})
	r.Use(SpanEnricher())
	r.GET("/portfolio/summary", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/portfolio/summary", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	span := serverSpan(t, sr)
	attrs := spanAttrs(span)
	assert.Equal(t, "req-123", attrs["request_id"].AsString())
	assert.Equal(t, owner.String(), attrs["owner_id"].AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanEnricher_MarksErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
	}{
		{"client error", http.StatusUnprocessableEntity, nil},
		{"server error with gin error", http.StatusInternalServerError, errors.New("store down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)
			r := gin.New()
			r.Use(Tracing("propledger-test"), SpanEnricher())
			r.POST("/properties/:id/cgt/sale", func(c *gin.Context) {
				if tt.err != nil {
					_ = c.Error(tt.err)
				}
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/properties/p1/cgt/sale", nil))

			span := serverSpan(t, sr)
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, http.StatusText(tt.status), span.Status().Description)
			assert.EqualValues(t, tt.status, spanAttrs(span)["http.status_code"].AsInt64())

			var exceptions int
			for _, e := range span.Events() {
				if e.Name == "exception" {
					exceptions++
				}
			}
			if tt.err != nil {
				assert.GreaterOrEqual(t, exceptions, 1)
			}
		})
	}
}

func TestSpanEnricher_NoSpan(t *testing.T) {
	r := gin.New()
	r.Use(SpanEnricher())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
