package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	tracecontext "bhakti-social/pkg/context"
)

// LoggingMiddleware 日志中间件配置
type LoggingMiddleware struct {
	logger kratoslog.Logger
}

// NewLoggingMiddleware 创建日志中间件
func NewLoggingMiddleware(logger kratoslog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// GinLogging Gin访问日志中间件，为每个请求注入请求ID
func (lm *LoggingMiddleware) GinLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx, requestID := tracecontext.EnsureRequestID(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		lm.logger.Log(kratoslog.LevelInfo,
			"msg", "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency.String(),
			"request_id", requestID,
			"client_ip", c.ClientIP(),
		)
	}
}

// GinRecovery Gin错误恢复中间件
func (lm *LoggingMiddleware) GinRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				lm.logger.Log(kratoslog.LevelError,
					"msg", "Panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)

				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "internal server error",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
