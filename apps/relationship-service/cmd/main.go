package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"bhakti-social/apps/relationship-service/dao"
	"bhakti-social/apps/relationship-service/handler"
	"bhakti-social/apps/relationship-service/service"
	"bhakti-social/pkg/server"
	"bhakti-social/pkg/subscription"
)

func main() {
	// 创建应用程序
	app := server.NewApplication("relationship-service")

	// 启用HTTP和gRPC服务器
	app.EnableHTTP()
	app.EnableGRPC()

	// 建表建索引
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dao.EnsureIndexes(ctx, app.GetMongoDB()); err != nil {
		panic(err)
	}

	// 初始化DAO层
	relationshipDAO := dao.NewRelationshipDAO(app.GetMongoDB())

	// 初始化Service层
	cfg := app.GetConfig()
	events := service.NewEventService(app.GetKafkaProducer(), app.GetLogger())
	lockTTL := time.Duration(cfg.Relationship.PairLockTTL) * time.Second
	locker := service.NewPairLocker(app.GetRedisClient(), lockTTL, app.GetLogger())
	svc := service.NewService(relationshipDAO, events, locker, subscription.NewHub(), app.GetLogger())

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
