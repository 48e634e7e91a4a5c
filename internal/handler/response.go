package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shorturl-analytics/internal/errx"
	"shorturl-analytics/internal/service"
)

const (
	msgURLRequired = "A valid original URL is required"
	msgCodeExists  = "Shortcode already exists"
	msgNotFound    = "Short URL not found"
	msgExpired     = "Link has expired"
	msgInternal    = "Internal server error"
	msgInvalidBody = "Invalid request body"
)

// ErrorResponse 业务错误响应
type ErrorResponse struct {
	Error   string `json:"error" example:"Short URL not found"`
	Success bool   `json:"success" example:"false"`
}

// FailureResponse 未分类错误的响应，不暴露内部细节
type FailureResponse struct {
	Message string `json:"message" example:"Internal server error"`
	Success bool   `json:"success" example:"false"`
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Success: false})
}

func abortWithInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, FailureResponse{Message: msgInternal, Success: false})
}

// writeServiceError 按错误分类写出响应，未分类的错误记录日志后返回 500
func writeServiceError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	switch errx.KindOf(err) {
	case errx.Invalid, errx.Validation:
		if errors.Is(err, service.ErrURLRequired) {
			abortWithError(c, http.StatusBadRequest, msgURLRequired)
			return
		}
		abortWithError(c, http.StatusBadRequest, errx.Message(err))
	case errx.Conflict:
		abortWithError(c, http.StatusConflict, msgCodeExists)
	case errx.NotFound:
		abortWithError(c, http.StatusNotFound, msgNotFound)
	case errx.Expired:
		abortWithError(c, http.StatusGone, msgExpired)
	default:
		logger.Errorw("请求处理失败", "path", c.FullPath(), "error", err)
		abortWithInternal(c)
	}
}

// bindingMessage 把请求绑定错误转换为可读的提示
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgInvalidBody
	}

	fe := verrs[0]
	if fe.Field() == "URL" {
		return msgURLRequired
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
