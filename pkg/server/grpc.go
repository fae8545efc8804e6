package server

import (
	"context"
	"net"

	kratoslog "github.com/go-kratos/kratos/v2/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"bhakti-social/pkg/config"
)

// GRPCServer gRPC服务器接口
type GRPCServer interface {
	GetServer() *grpc.Server
	RegisterService(registerFunc func(*grpc.Server))
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// GRPCServerWrapper gRPC服务器包装器
type GRPCServerWrapper struct {
	server       *grpc.Server
	healthServer *health.Server
	addr         string
	logger       kratoslog.Logger
}

// NewGRPCServerWrapper 创建gRPC服务器包装器，内置标准健康检查服务
func NewGRPCServerWrapper(c *config.Config, logger kratoslog.Logger, interceptors ...grpc.UnaryServerInterceptor) *GRPCServerWrapper {
	var opts []grpc.ServerOption
	if len(interceptors) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(interceptors...))
	}
	server := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)

	return &GRPCServerWrapper{
		server:       server,
		healthServer: healthServer,
		addr:         c.Server.GRPC.Addr,
		logger:       logger,
	}
}

// GetServer 获取gRPC服务器
func (w *GRPCServerWrapper) GetServer() *grpc.Server {
	return w.server
}

// RegisterService 注册gRPC服务
func (w *GRPCServerWrapper) RegisterService(registerFunc func(*grpc.Server)) {
	registerFunc(w.server)
}

// Start 启动服务器
func (w *GRPCServerWrapper) Start(ctx context.Context) error {
	w.logger.Log(kratoslog.LevelInfo, "msg", "gRPC server starting", "addr", w.addr)
	lis, err := net.Listen("tcp", w.addr)
	if err != nil {
		return err
	}
	w.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return w.server.Serve(lis)
}

// Stop 停止服务器
func (w *GRPCServerWrapper) Stop(ctx context.Context) error {
	w.logger.Log(kratoslog.LevelInfo, "msg", "gRPC server stopping")
	w.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	w.server.GracefulStop()
	return nil
}
