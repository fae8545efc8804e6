package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bhakti-social/apps/relationship-service/model"
	"bhakti-social/apps/relationship-service/service"
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

// WSHandler 实时流WebSocket处理器
// 客户端携带token和stream列表建连，每次关系变更推送对应流的最新快照。
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
	r.GET("/api/v1/relationship/ws", h.HandleStream)
}

// HandleStream 处理实时流连接
// 查询参数: token(JWT) streams(逗号分隔: pending,sent,connections)
func (h *WSHandler) HandleStream(c *gin.Context) {
	ctx := c.Request.Context()

	claims, err := auth.ValidateJWT(c.Query("token"), h.jwtKey)
	if err != nil {
		h.log.Warn(ctx, "WebSocket auth failed", logger.F("error", err.Error()))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}
	userID := claims.UserID

	streams := parseStreams(c.Query("streams"))
	if len(streams) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no valid streams requested"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error(ctx, "WebSocket upgrade failed", logger.F("error", err.Error()))
		return
	}
	defer conn.Close()

	h.log.Info(ctx, "Stream connection established",
		logger.F("userID", userID),
		logger.F("streams", strings.Join(streams, ",")))

	// 并发写保护：订阅回调和心跳都会写同一个连接
	var writeMu sync.Mutex
	writeFrame := func(stream string, data interface{}) {
		payload, err := json.Marshal(&StreamFrame{Stream: stream, Data: data})
		if err != nil {
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warn(ctx, "Stream write failed",
				logger.F("userID", userID),
				logger.F("stream", stream))
		}
	}

	var unsubscribes []func()
	for _, stream := range streams {
		stream := stream
		cb := func(payload interface{}) {
			writeFrame(stream, payload)
		}
		switch stream {
		case model.StreamPending:
			unsubscribes = append(unsubscribes, h.svc.SubscribePending(ctx, userID, cb))
		case model.StreamSent:
			unsubscribes = append(unsubscribes, h.svc.SubscribeSent(ctx, userID, cb))
		case model.StreamConnections:
			unsubscribes = append(unsubscribes, h.svc.SubscribeConnections(ctx, userID, cb))
		}
	}
	defer func() {
		for _, unsub := range unsubscribes {
			unsub()
		}
	}()

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

	h.log.Info(ctx, "Stream connection closed",
		logger.F("userID", strconv.FormatInt(userID, 10)))
}

// parseStreams 解析并过滤客户端请求的流类型
func parseStreams(raw string) []string {
	valid := map[string]bool{
		model.StreamPending:     true,
		model.StreamSent:        true,
		model.StreamConnections: true,
	}

	var streams []string
	seen := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if valid[s] && !seen[s] {
			streams = append(streams, s)
			seen[s] = true
		}
	}
	return streams
}
