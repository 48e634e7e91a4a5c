package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// Pinger 是可以做连通性检查的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 存活和就绪检查
type HealthHandler struct {
	version string
	checks  map[string]Pinger
}

// HealthResponse 就绪检查结果
type HealthResponse struct {
	Status    string                 `json:"status" example:"up"`
	Checks    map[string]CheckResult `json:"checks"`
	Version   string                 `json:"version" example:"1.0.0"`
	Timestamp string                 `json:"timestamp" example:"2024-05-01T12:00:00Z"`
}

type CheckResult struct {
	Status  string `json:"status" example:"up"`
	Message string `json:"message,omitempty" example:"connected"`
}

// NewHealthHandler 创建健康检查处理器，checks 中为 nil 的依赖会被忽略
func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{version: version, checks: active}
}

// HealthCheck godoc
// @Summary 存活检查
// @Tags Meta
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// Ready godoc
// @Summary 就绪检查
// @Description 检查数据库和缓存连接，任一不可用时返回 503
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "up",
		Checks:    make(map[string]CheckResult, len(h.checks)),
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = CheckResult{Status: "down", Message: err.Error()}
			resp.Status = "down"
			continue
		}
		resp.Checks[name] = CheckResult{Status: "up", Message: "connected"}
	}

	if resp.Status != "up" {
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
