package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"bhakti-social/apps/notification-service/dao"
	"bhakti-social/apps/notification-service/handler"
	"bhakti-social/apps/notification-service/model"
	"bhakti-social/apps/notification-service/service"
	"bhakti-social/pkg/kafka"
	"bhakti-social/pkg/lifecycle"
	"bhakti-social/pkg/server"
	"bhakti-social/pkg/subscription"
)

func main() {
	// 创建应用程序
	app := server.NewApplication("notification-service")

	// 启用HTTP和gRPC服务器
	app.EnableHTTP()
	app.EnableGRPC()

	// 建表建索引
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dao.EnsureIndexes(ctx, app.GetMongoDB()); err != nil {
		panic(err)
	}
	if err := app.GetPostgreSQL().AutoMigrate(&model.User{}); err != nil {
		panic(err)
	}

	// 初始化DAO层
	notificationDAO := dao.NewNotificationDAO(app.GetMongoDB())
	userDAO := dao.NewUserDAO(app.GetPostgreSQL())

	// 初始化Service层
	cfg := app.GetConfig()
	cacheTTL := time.Duration(cfg.Notification.UnreadCacheTTL) * time.Second
	cache := service.NewUnreadCache(app.GetRedisClient(), cacheTTL)
	svc := service.NewService(notificationDAO, userDAO, cache, subscription.NewHub(),
		cfg.Notification.RetentionHours, app.GetLogger())

	// 初始化Kafka消费者，订阅上游关系事件
	consumer, err := kafka.InitConsumer(kafka.KafkaConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: model.ConsumerGroup,
		Topics:  []string{model.TopicRelationshipEvents},
	}, service.NewEventConsumer(svc, app.GetLogger()))
	if err != nil {
		panic(err)
	}

	app.AddLifecycleHook(lifecycle.Hook{
		Name:     "kafka-consumer",
		Priority: 200,
		OnStart: func(ctx context.Context) error {
			return consumer.StartConsuming(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return consumer.Close()
		},
	})

	// 初始化Handler
	httpHandler := handler.NewHTTPHandler(svc, app.GetLogger())
	wsHandler := handler.NewWSHandler(svc, cfg.App.JWTSecret, app.GetLogger())

	// 注册HTTP和WebSocket路由
	app.RegisterHTTPRoutes(func(engine *gin.Engine) {
		httpHandler.RegisterRoutes(engine)
		wsHandler.RegisterRoutes(engine)
	})

	// 运行应用程序
	if err := app.Run(); err != nil {
		panic(err)
	}
}
