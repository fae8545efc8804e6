package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"bhakti-social/pkg/auth"
	tracecontext "bhakti-social/pkg/context"
)

// AuthMiddleware 认证中间件配置
type AuthMiddleware struct {
	logger kratoslog.Logger
	jwtKey string
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(logger kratoslog.Logger, jwtKey string) *AuthMiddleware {
	return &AuthMiddleware{
		logger: logger,
		jwtKey: jwtKey,
	}
}

// GinAuth Gin认证中间件
func (am *AuthMiddleware) GinAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 跳过健康检查和公开接口
		if am.shouldSkipAuth(c.Request.URL.Path) {
			c.Next()
			return
		}

		token := am.extractTokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			am.logger.Log(kratoslog.LevelWarn, "msg", "Missing authorization token", "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing authorization token"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateJWT(token, am.jwtKey)
		if err != nil {
			am.logger.Log(kratoslog.LevelWarn, "msg", "Invalid token", "error", err, "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			c.Abort()
			return
		}

		// 将用户信息存储到上下文
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		ctx := tracecontext.WithUserID(c.Request.Context(), strconv.FormatInt(claims.UserID, 10))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GRPCAuth gRPC认证拦截器
func (am *AuthMiddleware) GRPCAuth() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		// 健康检查不做认证
		if strings.HasPrefix(info.FullMethod, "/grpc.health") {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		tokens := md.Get("authorization")
		if len(tokens) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization token")
		}

		token := am.extractTokenFromHeader(tokens[0])
		claims, err := auth.ValidateJWT(token, am.jwtKey)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = tracecontext.WithUserID(ctx, strconv.FormatInt(claims.UserID, 10))
		return handler(ctx, req)
	}
}

// shouldSkipAuth 判断路径是否跳过认证
func (am *AuthMiddleware) shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/health",
		"/api/v1/user/register",
		"/api/v1/user/login",
	}

	for _, skipPath := range skipPaths {
		if path == skipPath {
			return true
		}
	}
	// WebSocket升级请求无法携带Authorization头，token在处理器内校验
	return strings.HasSuffix(path, "/ws")
}

// extractTokenFromHeader 从Authorization头提取token
func (am *AuthMiddleware) extractTokenFromHeader(header string) string {
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
