package context

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// 上下文键，与logger包的提取逻辑保持一致
const (
	RequestIDKey   = "request_id"
	UserIDKey      = "user_id"
	ServiceNameKey = "service_name"
)

// NewRequestID 生成新的请求ID
func NewRequestID() string {
	return uuid.New().String()
}

// WithRequestID 注入请求ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFromContext 提取请求ID，不存在时返回空串
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithUserID 注入用户ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithServiceName 注入服务名
func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

// TraceIDFromContext 提取otel trace ID，优先于请求ID用于日志关联
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// EnsureRequestID 确保上下文带有请求ID，缺失时生成一个
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		return ctx, requestID
	}
	// 有trace时复用trace ID，方便跨服务检索
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		return WithRequestID(ctx, traceID), traceID
	}
	requestID := NewRequestID()
	return WithRequestID(ctx, requestID), requestID
}
