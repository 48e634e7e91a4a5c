package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func setupHealthRouter(checks map[string]Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler("test", checks)
	router := gin.New()
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.Ready)
	return router
}

func TestHealthCheck(t *testing.T) {
	router := setupHealthRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestReady_AllUp(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	router := setupHealthRouter(map[string]Pinger{"database": up, "cache": up, "disabled": nil})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "up", resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, "test", resp.Version)
}

func TestReady_DependencyDown(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") })
	router := setupHealthRouter(map[string]Pinger{"database": up, "cache": down})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "down", resp.Status)
	assert.Equal(t, "up", resp.Checks["database"].Status)
	assert.Equal(t, "down", resp.Checks["cache"].Status)
}
