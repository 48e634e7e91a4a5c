package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shorturl-analytics/internal/geo"
	"shorturl-analytics/internal/model"
	"shorturl-analytics/internal/service"
)

// ShortLinkPath 是短链接重定向路由的前缀
const ShortLinkPath = "/api/v1/shorturl/"

// LinkService 创建和解析短链接
type LinkService interface {
	CreateLink(ctx context.Context, in service.CreateLinkInput) (*service.CreatedLink, error)
	ResolveAndRecord(ctx context.Context, code string, meta service.RequestMeta) (string, error)
}

// Analytics 只读统计
type Analytics interface {
	ListAll(ctx context.Context) ([]model.Link, error)
	Stats(ctx context.Context) (*model.LinkStats, error)
}

// ShortLinkHandler 处理器
type ShortLinkHandler struct {
	links     LinkService
	analytics Analytics
	baseURL   string
	logger    *zap.SugaredLogger
}

// NewShortLinkHandler 创建处理器实例。baseURL 为空时用请求的协议和 Host 拼接短链接。
func NewShortLinkHandler(links LinkService, analytics Analytics, baseURL string, logger *zap.SugaredLogger) *ShortLinkHandler {
	return &ShortLinkHandler{
		links:     links,
		analytics: analytics,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger.Named("handler"),
	}
}

// Register 注册 /api/v1 下的路由
func (h *ShortLinkHandler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.GET("", h.Welcome)
	v1.POST("/shorturl", h.CreateShortLink)
	v1.GET("/shorturl/all", h.GetAllLinks)
	v1.GET("/shorturl/stats", h.GetStats)
	v1.GET("/shorturl/:shortcode", h.RedirectToOriginal)
}

// CreateShortLinkRequest 创建短链接的请求体
type CreateShortLinkRequest struct {
	URL       string `json:"url" binding:"required" example:"https://github.com/gin-gonic/gin"`
	Shortcode string `json:"shortcode,omitempty" binding:"max=64" example:"gin-docs"`
	Validity  *int   `json:"validity,omitempty" example:"30"`
}

// CreateShortLinkResponse 创建成功的响应
type CreateShortLinkResponse struct {
	Message   string `json:"message" example:"Short URL generated successfully"`
	ShortLink string `json:"shortLink" example:"http://localhost:8080/api/v1/shorturl/Ab3_x9"`
	Expiry    string `json:"expiry" example:"2024-05-01T12:30:00.000Z"`
	Success   bool   `json:"success" example:"true"`
}

// ListLinksResponse 所有链接及点击记录
type ListLinksResponse struct {
	Message string       `json:"message" example:"Fetched all shortened URLs successfully"`
	URLs    []model.Link `json:"urls"`
	Success bool         `json:"success" example:"true"`
}

// StatsResponse 汇总统计
type StatsResponse struct {
	Message string          `json:"message" example:"Fetched stats successfully"`
	Stats   model.LinkStats `json:"stats"`
	Success bool            `json:"success" example:"true"`
}

// Welcome godoc
// @Summary API 根路径
// @Tags Meta
// @Produce plain
// @Success 200 {string} string "欢迎信息"
// @Router /api/v1 [get]
func (h *ShortLinkHandler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the API version 1 root!")
}

// CreateShortLink godoc
// @Summary 创建短链接
// @Description 为一个长 URL 创建短链接，可指定自定义短码和有效期（分钟，默认 30）
// @Tags ShortLink
// @Accept  json
// @Produce  json
// @Param   request  body   CreateShortLinkRequest  true  "长链接及可选参数"
// @Success 201 {object} CreateShortLinkResponse "创建成功"
// @Failure 400 {object} ErrorResponse "请求无效或校验失败"
// @Failure 409 {object} ErrorResponse "短码已存在"
// @Failure 500 {object} FailureResponse "服务器内部错误"
// @Router /api/v1/shorturl [post]
func (h *ShortLinkHandler) CreateShortLink(c *gin.Context) {
	var req CreateShortLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	created, err := h.links.CreateLink(c.Request.Context(), service.CreateLinkInput{
		OriginalURL:     strings.TrimSpace(req.URL),
		Shortcode:       req.Shortcode,
		ValidityMinutes: req.Validity,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, CreateShortLinkResponse{
		Message:   "Short URL generated successfully",
		ShortLink: h.shortLinkBase(c) + ShortLinkPath + created.Shortcode,
		Expiry:    created.ExpiresAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		Success:   true,
	})
}

// RedirectToOriginal godoc
// @Summary 短链接重定向
// @Description 302 跳转到原始链接，并记录一次点击（时间、来源、地理位置）
// @Tags ShortLink
// @Produce  json
// @Param   shortcode  path  string  true  "短码"
// @Success 302 "跳转到原始链接"
// @Failure 404 {object} ErrorResponse "短码不存在"
// @Failure 410 {object} ErrorResponse "链接已过期"
// @Failure 500 {object} FailureResponse "服务器内部错误"
// @Router /api/v1/shorturl/{shortcode} [get]
func (h *ShortLinkHandler) RedirectToOriginal(c *gin.Context) {
	code := c.Param("shortcode")

	target, err := h.links.ResolveAndRecord(c.Request.Context(), code, service.RequestMeta{
		Referrer:      c.GetHeader("Referer"),
		ClientAddress: geo.ClientAddress(c.Request),
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.Redirect(http.StatusFound, target)
}

// GetAllLinks godoc
// @Summary 所有短链接
// @Description 按创建时间倒序返回所有短链接及其点击记录，包括已过期的链接
// @Tags Analytics
// @Produce  json
// @Success 200 {object} ListLinksResponse
// @Failure 500 {object} FailureResponse "服务器内部错误"
// @Router /api/v1/shorturl/all [get]
func (h *ShortLinkHandler) GetAllLinks(c *gin.Context) {
	links, err := h.analytics.ListAll(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	if links == nil {
		links = []model.Link{}
	}

	c.JSON(http.StatusOK, ListLinksResponse{
		Message: "Fetched all shortened URLs successfully",
		URLs:    links,
		Success: true,
	})
}

// GetStats godoc
// @Summary 汇总统计
// @Tags Analytics
// @Produce  json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} FailureResponse "服务器内部错误"
// @Router /api/v1/shorturl/stats [get]
func (h *ShortLinkHandler) GetStats(c *gin.Context) {
	stats, err := h.analytics.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Message: "Fetched stats successfully",
		Stats:   *stats,
		Success: true,
	})
}

func (h *ShortLinkHandler) shortLinkBase(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	} else if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + c.Request.Host
}

// Index godoc
// @Summary 根路径
// @Tags Meta
// @Produce plain
// @Success 200 {string} string "欢迎信息"
// @Router / [get]
func Index(c *gin.Context) {
	c.String(http.StatusOK, "Hello from the shorturl-analytics server!")
}
