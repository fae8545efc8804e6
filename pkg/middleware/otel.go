package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bhakti-social/pkg/logger"
)

// OTelMiddleware OpenTelemetry中间件配置
type OTelMiddleware struct {
	serviceName string
	logger      logger.Logger
}

// NewOTelMiddleware 创建OpenTelemetry中间件
func NewOTelMiddleware(serviceName string, log logger.Logger) *OTelMiddleware {
	return &OTelMiddleware{
		serviceName: serviceName,
		logger:      log,
	}
}

// GinMiddleware 返回Gin的OpenTelemetry中间件
func (m *OTelMiddleware) GinMiddleware() gin.HandlerFunc {
	return otelgin.Middleware(m.serviceName)
}

// SpanEnrichment 在span上补充用户属性
// 需要挂在认证中间件之后，此时userID已写入上下文且span尚未结束。
func (m *OTelMiddleware) SpanEnrichment() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if userID, exists := c.Get("userID"); exists {
				if id, ok := userID.(int64); ok {
					span.SetAttributes(attribute.Int64("user.id", id))
				}
			}
		}
		c.Next()
	}
}
