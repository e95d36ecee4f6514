package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(l *zap.Logger, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-123")
		c.Next()
	})
	r.Use(Recovery(l), GinMiddleware(l))
	r.GET("/properties/:id", handler)
	return r
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs completed requests with owner and route", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		r := newTestRouter(zap.New(core), func(c *gin.Context) {
			c.Set(GinOwnerIDKey, "owner-1")
			c.Status(http.StatusOK)
		})

		w := serve(r, "/properties/abc?from_fy=2024")

		assert.Equal(t, http.StatusOK, w.Code)
		entries := recorded.FilterMessage("request completed").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-123", fields["request_id"])
		assert.Equal(t, "owner-1", fields["owner_id"])
		assert.Equal(t, "/properties/:id", fields["route"])
		assert.Equal(t, "from_fy=2024", fields["query"])
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		r := newTestRouter(zap.New(core), func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})

		serve(r, "/properties/abc")

		entries := recorded.FilterMessage("request rejected").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("request context carries the logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		r := newTestRouter(zap.New(core), func(c *gin.Context) {
			L(c.Request.Context()).Info("inside handler")
			c.Status(http.StatusOK)
		})

		serve(r, "/properties/abc")

		entries := recorded.FilterMessage("inside handler").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core), func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, "/properties/abc")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, recorded.FilterMessage("panic recovered").Len())
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))

	l := zap.NewExample()
	c.Set(ginLoggerKey, l)
	assert.Same(t, l, GetGinLogger(c))
}
