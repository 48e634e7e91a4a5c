package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shorturl-analytics/internal/errx"
	"shorturl-analytics/internal/model"
	"shorturl-analytics/internal/repository"
	"shorturl-analytics/internal/service"
	"shorturl-analytics/internal/shortcode"
	"shorturl-analytics/pkg/database"
)

type stubGeo struct{}

func (stubGeo) Resolve(address string) string {
	if address == "198.51.100.23" {
		return "Berlin, DE"
	}
	return model.UnknownLocation
}

// setupTest 为集成测试初始化一个干净的环境：内存数据库、真实的服务层和路由
func setupTest(t *testing.T, baseURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop().Sugar()
	db, err := database.Open(&database.Options{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	repo := repository.NewLinkRepository(db)
	links := service.NewLinkService(repo, nil, shortcode.NewGenerator(), stubGeo{},
		service.Config{StrictClickRecording: true}, logger)
	h := NewShortLinkHandler(links, service.NewAnalyticsReader(repo), baseURL, logger)

	router := gin.New()
	router.GET("/", Index)
	h.Register(router)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// TestShortLinkHandler_Integration 测试创建、重定向和统计的完整流程
func TestShortLinkHandler_Integration(t *testing.T) {
	router := setupTest(t, "")
	originalURL := "https://www.google.com/very/long/path/that/needs/shortening"

	// === 步骤 1: 创建短链接 ===
	w := doJSON(router, http.MethodPost, "/api/v1/shorturl", CreateShortLinkRequest{URL: originalURL})
	require.Equal(t, http.StatusCreated, w.Code)

	var created CreateShortLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, "Short URL generated successfully", created.Message)
	assert.True(t, strings.HasPrefix(created.ShortLink, "http://example.com/api/v1/shorturl/"), created.ShortLink)
	assert.True(t, strings.HasSuffix(created.Expiry, "Z"))
	code := strings.TrimPrefix(created.ShortLink, "http://example.com/api/v1/shorturl/")
	assert.Len(t, code, shortcode.CodeLength)

	// === 步骤 2: 访问短链接 ===
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shorturl/"+code, nil)
	req.Header.Set("Referer", "https://news.example.com")
	req.Header.Set("X-Forwarded-For", "198.51.100.23")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, originalURL, w.Header().Get("Location"))

	// === 步骤 3: 查看统计 ===
	w = doJSON(router, http.MethodGet, "/api/v1/shorturl/all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Message string `json:"message"`
		URLs    []struct {
			Shortcode   string `json:"shortcode"`
			OriginalURL string `json:"originalURL"`
			Clicks      []struct {
				Timestamp   string `json:"timestamp"`
				Referrer    string `json:"referrer"`
				GeoLocation string `json:"geoLocation"`
			} `json:"clicks"`
		} `json:"urls"`
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.True(t, list.Success)
	assert.Equal(t, "Fetched all shortened URLs successfully", list.Message)
	require.Len(t, list.URLs, 1)
	assert.Equal(t, code, list.URLs[0].Shortcode)
	assert.Equal(t, originalURL, list.URLs[0].OriginalURL)
	require.Len(t, list.URLs[0].Clicks, 1)
	assert.Equal(t, "https://news.example.com", list.URLs[0].Clicks[0].Referrer)
	assert.Equal(t, "Berlin, DE", list.URLs[0].Clicks[0].GeoLocation)
	assert.NotEmpty(t, list.URLs[0].Clicks[0].Timestamp)
}

func TestCreateShortLink_CustomCodeAndBaseURL(t *testing.T) {
	router := setupTest(t, "https://sho.rt/")

	w := doJSON(router, http.MethodPost, "/api/v1/shorturl", map[string]interface{}{
		"url":       "https://example.com",
		"shortcode": "promo",
		"validity":  5,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "https://sho.rt/api/v1/shorturl/promo", body["shortLink"])
}

func TestCreateShortLink_MissingURL(t *testing.T) {
	router := setupTest(t, "")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"absent", map[string]interface{}{"shortcode": "abc"}},
		{"blank", map[string]interface{}{"url": "   ", "shortcode": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/v1/shorturl", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, "A valid original URL is required", body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestCreateShortLink_MalformedBody(t *testing.T) {
	router := setupTest(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shorturl", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode(t, w)["error"])
}

func TestCreateShortLink_ValidationFailure(t *testing.T) {
	router := setupTest(t, "")

	w := doJSON(router, http.MethodPost, "/api/v1/shorturl", CreateShortLinkRequest{URL: "definitely not a url"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["error"], "Url validation failed")
	assert.Equal(t, false, body["success"])
}

func TestCreateShortLink_ReservedCode(t *testing.T) {
	router := setupTest(t, "")

	w := doJSON(router, http.MethodPost, "/api/v1/shorturl", CreateShortLinkRequest{URL: "https://example.com", Shortcode: "all"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateShortLink_Conflict(t *testing.T) {
	router := setupTest(t, "")
	req := CreateShortLinkRequest{URL: "https://example.com", Shortcode: "dupe"}

	require.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/api/v1/shorturl", req).Code)
	w := doJSON(router, http.MethodPost, "/api/v1/shorturl", req)

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Shortcode already exists", body["error"])
	assert.Equal(t, false, body["success"])
}

func TestRedirect_NotFound(t *testing.T) {
	router := setupTest(t, "")

	w := doJSON(router, http.MethodGet, "/api/v1/shorturl/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Short URL not found", body["error"])
	assert.Equal(t, false, body["success"])
	assert.Empty(t, w.Header().Get("Location"))
}

func TestRedirect_Expired(t *testing.T) {
	router := setupTest(t, "")
	require.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/api/v1/shorturl",
		map[string]interface{}{"url": "https://example.com", "shortcode": "gone", "validity": -1}).Code)

	w := doJSON(router, http.MethodGet, "/api/v1/shorturl/gone", nil)

	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "Link has expired", decode(t, w)["error"])

	// 过期的链接仍然出现在统计中，且没有点击
	w = doJSON(router, http.MethodGet, "/api/v1/shorturl/all", nil)
	assert.Contains(t, w.Body.String(), `"clicks":[]`)
}

func TestGetStats(t *testing.T) {
	router := setupTest(t, "")
	require.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/api/v1/shorturl",
		CreateShortLinkRequest{URL: "https://example.com", Shortcode: "live"}).Code)
	doJSON(router, http.MethodGet, "/api/v1/shorturl/live", nil)

	w := doJSON(router, http.MethodGet, "/api/v1/shorturl/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, model.LinkStats{TotalLinks: 1, TotalClicks: 1, ActiveLinks: 1}, resp.Stats)
}

func TestWelcomeRoutes(t *testing.T) {
	router := setupTest(t, "")

	w := doJSON(router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello")

	w = doJSON(router, http.MethodGet, "/api/v1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to the API version 1 root!", w.Body.String())
}

type failingAnalytics struct{}

func (failingAnalytics) ListAll(context.Context) ([]model.Link, error) {
	return nil, errx.E("service.ListAll", errx.Unavailable, errors.New("connection reset"))
}

func (failingAnalytics) Stats(context.Context) (*model.LinkStats, error) {
	return nil, errors.New("boom")
}

func TestGetAllLinks_StoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewShortLinkHandler(nil, failingAnalytics{}, "", zap.NewNop().Sugar())
	router := gin.New()
	h.Register(router)

	for _, path := range []string{"/api/v1/shorturl/all", "/api/v1/shorturl/stats"} {
		w := doJSON(router, http.MethodGet, path, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Internal server error", body["message"])
		assert.Equal(t, false, body["success"])
		assert.NotContains(t, w.Body.String(), "connection reset")
	}
}
