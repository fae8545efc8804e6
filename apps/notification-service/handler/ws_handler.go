package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bhakti-social/apps/notification-service/model"
	"bhakti-social/apps/notification-service/service"
	"bhakti-social/pkg/auth"
	"bhakti-social/pkg/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// StreamFrame 推送给客户端的流消息
type StreamFrame struct {
	Stream string      `json:"stream"`
	Data   interface{} `json:"data"`
}

// WSHandler 通知流WebSocket处理器
type WSHandler struct {
	svc      *service.Service
	jwtKey   string
	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewWSHandler 创建WebSocket处理器
func NewWSHandler(svc *service.Service, jwtKey string, log logger.Logger) *WSHandler {
	return &WSHandler{
		svc:    svc,
		jwtKey: jwtKey,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/v1/notification/ws", h.HandleStream)
}

// HandleStream 处理通知流连接
// 查询参数: token(JWT)。建连即推当前快照，之后每次通知变更推送最新快照。
func (h *WSHandler) HandleStream(c *gin.Context) {
	ctx := c.Request.Context()

	claims, err := auth.ValidateJWT(c.Query("token"), h.jwtKey)
	if err != nil {
		h.log.Warn(ctx, "WebSocket auth failed", logger.F("error", err.Error()))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}
	userID := claims.UserID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error(ctx, "WebSocket upgrade failed", logger.F("error", err.Error()))
		return
	}
	defer conn.Close()

	h.log.Info(ctx, "Notification stream established", logger.F("userID", userID))

	var writeMu sync.Mutex
	unsubscribe := h.svc.SubscribeNotifications(ctx, userID, func(payload interface{}) {
		data, err := json.Marshal(&StreamFrame{Stream: model.StreamNotifications, Data: payload})
		if err != nil {
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Warn(ctx, "Notification stream write failed", logger.F("userID", userID))
		}
	})
	defer unsubscribe()

	done := make(chan struct{})

	// 心跳保活
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	// 读循环只用于感知客户端断开
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	close(done)

	h.log.Info(ctx, "Notification stream closed", logger.F("userID", userID))
}
