package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/ok", "/ok", "/fail", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	snapshot := m.Snapshot()
	assert.Equal(t, int64(4), snapshot.RequestCount)
	assert.Equal(t, int64(2), snapshot.ErrorCount)
	assert.Equal(t, int64(0), snapshot.ActiveRequests)
	assert.Equal(t, int64(2), snapshot.Endpoints["GET /ok"])
	assert.Equal(t, int64(1), snapshot.Endpoints["GET unmatched"])
	assert.Equal(t, int64(2), snapshot.StatusCodes["OK"])
}

func TestMetricsHandler_IncludesComponents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.GET("/metrics", MetricsHandler(m, map[string]StatsFunc{
		"cache": func() map[string]interface{} { return map[string]interface{}{"mode": "memory"} },
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "application")
	assert.Contains(t, body, "system")
	assert.Equal(t, map[string]interface{}{"mode": "memory"}, body["cache"])
}

func TestHealthChecker_RunsChecksEveryTime(t *testing.T) {
	h := NewHealthChecker(time.Second)

	calls := 0
	h.Register("db", func(ctx context.Context) error {
		calls++
		return nil
	})

	h.Run(context.Background())
	h.Run(context.Background())

	assert.Equal(t, 2, calls)
}

func TestHealthChecker_Timeout(t *testing.T) {
	h := NewHealthChecker(20 * time.Millisecond)
	h.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	results := h.Run(context.Background())
	assert.Equal(t, "unhealthy", results["slow"].Status)
	assert.Contains(t, results["slow"].Message, "deadline")
}

func TestHealthHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	h := NewHealthChecker(time.Second)

	failing := false
	h.Register("db", func(ctx context.Context) error {
		if failing {
			return errors.New("connection refused")
		}
		return nil
	})

	router := gin.New()
	router.GET("/health", HealthHandler(h, m))
	router.GET("/ready", ReadinessHandler(h))
	router.GET("/live", LivenessHandler(m))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, http.StatusOK, get("/health").Code)
	assert.Equal(t, http.StatusOK, get("/ready").Code)

	failing = true

	w := get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, get("/ready").Code)
	assert.Equal(t, http.StatusOK, get("/live").Code)
}

func TestHealthHandlers_OptionalCheckDegrades(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	h := NewHealthChecker(time.Second)

	h.Register("database", func(ctx context.Context) error { return nil })
	h.RegisterOptional("cache", func(ctx context.Context) error {
		return errors.New("redis: connection refused")
	})

	router := gin.New()
	router.GET("/health", HealthHandler(h, m))
	router.GET("/ready", ReadinessHandler(h))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string                 `json:"status"`
		Checks map[string]HealthCheck `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, StatusDegraded, body.Status)
	assert.Equal(t, StatusDegraded, body.Checks["cache"].Status)
	assert.Equal(t, StatusHealthy, body.Checks["database"].Status)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
