package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"
	"google.golang.org/grpc"

	"bhakti-social/pkg/config"
	"bhakti-social/pkg/database"
	"bhakti-social/pkg/kafka"
	"bhakti-social/pkg/lifecycle"
	"bhakti-social/pkg/logger"
	"bhakti-social/pkg/middleware"
	"bhakti-social/pkg/redis"
	"bhakti-social/pkg/telemetry"
)

// Application 应用程序框架
// 负责配置加载、基础设施连接、服务器和生命周期的统一管理。
type Application struct {
	serviceName    string
	config         *config.Config
	logger         kratoslog.Logger
	originalLogger logger.Logger
	serverManager  *ServerManager
	lifecycle      *lifecycle.LifecycleManager

	// 基础设施组件
	mongoDB       *database.MongoDB
	postgreSQL    *database.PostgreSQL
	redisClient   *redis.RedisClient
	kafkaProducer *kafka.Producer
	telemetry     *telemetry.Provider

	// 中间件
	authMiddleware    *middleware.AuthMiddleware
	loggingMiddleware *middleware.LoggingMiddleware
	otelMiddleware    *middleware.OTelMiddleware

	// 注册函数
	httpRouteRegister   func(*gin.Engine)
	grpcServiceRegister func(*grpc.Server)
}

// NewApplication 创建应用程序
func NewApplication(serviceName string) *Application {
	cfg := config.LoadConfig(serviceName)

	if err := logger.Init(cfg.App.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	originalLogger := logger.GetLogger()

	kratosLogger := logger.NewKratosLogger(originalLogger)

	lifecycleManager := lifecycle.NewLifecycleManager(kratosLogger)
	serverManager := NewServerManager(cfg, kratosLogger)

	authMiddleware := middleware.NewAuthMiddleware(kratosLogger, cfg.App.JWTSecret)
	loggingMiddleware := middleware.NewLoggingMiddleware(kratosLogger)
	otelMiddleware := middleware.NewOTelMiddleware(cfg.App.Name, originalLogger)

	app := &Application{
		serviceName:       serviceName,
		config:            cfg,
		logger:            kratosLogger,
		originalLogger:    originalLogger,
		serverManager:     serverManager,
		lifecycle:         lifecycleManager,
		authMiddleware:    authMiddleware,
		loggingMiddleware: loggingMiddleware,
		otelMiddleware:    otelMiddleware,
	}

	app.initInfrastructure()

	return app
}

// initInfrastructure 初始化基础设施组件
// MongoDB/Redis/Kafka所有服务都用，启动时直连；PostgreSQL按需连接。
func (app *Application) initInfrastructure() {
	telemetryCfg := telemetry.DefaultConfig(app.config.App.Name)
	telemetryCfg.ServiceVersion = app.config.App.Version
	telemetryCfg.Environment = app.config.App.Env
	provider, err := telemetry.NewProvider(telemetryCfg)
	if err != nil {
		app.logger.Log(kratoslog.LevelFatal, "msg", "Failed to initialize telemetry", "error", err)
		panic(err)
	}
	app.telemetry = provider

	mongoDB, err := database.NewMongoDB(app.config.Database.MongoDB.URI, app.config.Database.MongoDB.DBName)
	if err != nil {
		app.logger.Log(kratoslog.LevelFatal, "msg", "Failed to connect to MongoDB", "error", err)
		panic(err)
	}
	app.mongoDB = mongoDB

	app.redisClient = redis.NewRedisClient(app.config.Redis.Addr, app.config.Redis.Password, app.config.Redis.DB)

	kafkaProducer, err := kafka.InitProducer(app.config.Kafka.Brokers)
	if err != nil {
		app.logger.Log(kratoslog.LevelFatal, "msg", "Failed to connect to Kafka", "error", err)
		panic(err)
	}
	app.kafkaProducer = kafkaProducer
}

// EnableHTTP 启用HTTP服务器并挂载通用中间件
func (app *Application) EnableHTTP() HTTPServer {
	httpServer := app.serverManager.EnableHTTP()

	httpServer.RegisterRoutes(func(engine *gin.Engine) {
		engine.Use(app.loggingMiddleware.GinRecovery())
		engine.Use(app.loggingMiddleware.GinLogging())
		engine.Use(app.otelMiddleware.GinMiddleware())
		engine.Use(app.authMiddleware.GinAuth())
		engine.Use(app.otelMiddleware.SpanEnrichment())
	})

	return httpServer
}

// EnableGRPC 启用gRPC服务器
func (app *Application) EnableGRPC() GRPCServer {
	return app.serverManager.EnableGRPC(app.authMiddleware.GRPCAuth())
}

// RegisterHTTPRoutes 注册HTTP路由
func (app *Application) RegisterHTTPRoutes(registerFunc func(*gin.Engine)) {
	app.httpRouteRegister = registerFunc
}

// RegisterGRPCService 注册gRPC服务
func (app *Application) RegisterGRPCService(registerFunc func(*grpc.Server)) {
	app.grpcServiceRegister = registerFunc
}

// AddLifecycleHook 注册自定义生命周期钩子
func (app *Application) AddLifecycleHook(hook lifecycle.Hook) {
	app.lifecycle.AddHook(hook)
}

// GetMongoDB 获取MongoDB连接
func (app *Application) GetMongoDB() *database.MongoDB {
	return app.mongoDB
}

// GetPostgreSQL 获取PostgreSQL连接，首次调用时建立连接
func (app *Application) GetPostgreSQL() *database.PostgreSQL {
	if app.postgreSQL == nil {
		postgreSQL, err := database.NewPostgreSQL(app.config.Database.PostgreSQL.DSN)
		if err != nil {
			app.logger.Log(kratoslog.LevelFatal, "msg", "Failed to connect to PostgreSQL", "error", err)
			panic(err)
		}
		app.postgreSQL = postgreSQL
	}
	return app.postgreSQL
}

// GetRedisClient 获取Redis客户端
func (app *Application) GetRedisClient() *redis.RedisClient {
	return app.redisClient
}

// GetKafkaProducer 获取Kafka生产者
func (app *Application) GetKafkaProducer() *kafka.Producer {
	return app.kafkaProducer
}

// GetLogger 获取业务日志器
func (app *Application) GetLogger() logger.Logger {
	return app.originalLogger
}

// GetKratosLogger 获取Kratos日志器
func (app *Application) GetKratosLogger() kratoslog.Logger {
	return app.logger
}

// GetConfig 获取配置
func (app *Application) GetConfig() *config.Config {
	return app.config
}

// Run 运行应用程序，阻塞直到收到停止信号
func (app *Application) Run() error {
	app.registerLifecycleHooks()

	if err := app.lifecycle.Start(); err != nil {
		return fmt.Errorf("failed to start lifecycle: %w", err)
	}

	app.lifecycle.Wait()

	return nil
}

// registerLifecycleHooks 注册内置生命周期钩子
func (app *Application) registerLifecycleHooks() {
	if app.httpRouteRegister != nil {
		app.serverManager.RegisterHTTPRoutes(app.httpRouteRegister)
	}
	if app.grpcServiceRegister != nil {
		app.serverManager.RegisterGRPCService(app.grpcServiceRegister)
	}

	// 服务器启动钩子
	app.lifecycle.AddHook(lifecycle.Hook{
		Name:     "servers",
		Priority: 100,
		OnStart: func(ctx context.Context) error {
			return app.serverManager.StartAll(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return app.serverManager.StopAll(ctx)
		},
	})

	// 基础设施清理钩子
	app.lifecycle.AddHook(lifecycle.Hook{
		Name:     "infrastructure",
		Priority: 300,
		OnStop: func(ctx context.Context) error {
			if app.kafkaProducer != nil {
				if err := app.kafkaProducer.Close(); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to close Kafka producer", "error", err)
				}
			}
			if app.redisClient != nil {
				if err := app.redisClient.Close(); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to close Redis", "error", err)
				}
			}
			if app.mongoDB != nil {
				if err := app.mongoDB.Close(); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to close MongoDB", "error", err)
				}
			}
			if app.postgreSQL != nil {
				if err := app.postgreSQL.Close(); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to close PostgreSQL", "error", err)
				}
			}
			if app.telemetry != nil {
				if err := app.telemetry.Shutdown(ctx); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to shutdown telemetry", "error", err)
				}
			}
			return nil
		},
	})
}
