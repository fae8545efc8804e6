package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bhakti-social/apps/notification-service/model"
	"bhakti-social/apps/notification-service/service"
	"bhakti-social/pkg/httpx"
	"bhakti-social/pkg/logger"
)

// HTTPHandler HTTP协议处理器
type HTTPHandler struct {
	svc *service.Service
	log logger.Logger
}

// NewHTTPHandler 创建HTTP处理器
func NewHTTPHandler(svc *service.Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc: svc,
		log: log,
	}
}

// RegisterRoutes 注册HTTP路由
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/notification")
	{
		api.POST("/list", h.ListNotifications)           // 查询通知列表
		api.POST("/get", h.GetNotification)              // 查询单条通知
		api.POST("/read", h.MarkRead)                    // 标记单条已读
		api.POST("/read_all", h.MarkAllRead)             // 全部标记已读
		api.POST("/unread_count", h.UnreadCount)         // 未读数查询
		api.POST("/broadcast", h.Broadcast)              // 全员广播
		api.POST("/content_decision", h.ContentDecision) // 内容审核结果通知
	}

	user := r.Group("/api/v1/user")
	{
		user.POST("/register", h.RegisterUser)               // 用户注册
		user.POST("/get", h.GetUser)                         // 查询用户
		user.POST("/get_by_username", h.GetUserByUsername)    // 按用户名查询用户
	}
}

// statusForError 业务错误到HTTP状态码的映射
func statusForError(err error) int {
	switch err {
	case nil:
		return http.StatusOK
	case service.ErrNotificationNotFound, service.ErrUserNotFound:
		return http.StatusNotFound
	case service.ErrDuplicateUsername:
		return http.StatusBadRequest
	case service.ErrNotAdmin:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respond 输出统一响应格式
func (h *HTTPHandler) respond(c *gin.Context, err error, message string, data interface{}) {
	if err != nil {
		c.JSON(statusForError(err), gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// ListNotifications 查询保留窗口内的通知
func (h *HTTPHandler) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.ListNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid list notifications request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	notifications, err := h.svc.ListActive(ctx, req.UserID, req.UnreadOnly)
	if err != nil {
		h.log.Error(ctx, "List notifications failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, gin.H{
		"success": err == nil,
		"data":    notifications,
		"total":   len(notifications),
	}, err)
}

// GetNotification 查询保留窗口内的单条通知
func (h *HTTPHandler) GetNotification(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.GetNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid get notification request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	notification, err := h.svc.GetNotification(ctx, req.UserID, req.NotificationID)
	if err != nil {
		h.log.Error(ctx, "Get notification failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "查询成功", notification)
}

// MarkRead 标记单条通知已读
func (h *HTTPHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid mark read request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	err := h.svc.MarkRead(ctx, req.UserID, req.NotificationID)
	if err != nil {
		h.log.Error(ctx, "Mark notification read failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "已标记为已读", nil)
}

// MarkAllRead 全部标记已读
func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.MarkAllReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid mark all read request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	err := h.svc.MarkAllRead(ctx, req.UserID)
	if err != nil {
		h.log.Error(ctx, "Mark all notifications read failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "已全部标记为已读", nil)
}

// UnreadCount 未读数查询
func (h *HTTPHandler) UnreadCount(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.UnreadCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid unread count request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	count, err := h.svc.UnreadCount(ctx, req.UserID)
	if err != nil {
		h.log.Error(ctx, "Count unread notifications failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, gin.H{
		"success": err == nil,
		"data":    gin.H{"count": count},
	}, err)
}

// Broadcast 向全部注册用户广播
func (h *HTTPHandler) Broadcast(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid broadcast request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	delivered, err := h.svc.Broadcast(ctx, c.GetInt64("userID"), req.Title, req.Message)
	if err != nil {
		h.log.Error(ctx, "Broadcast failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "广播已投递", gin.H{"delivered": delivered})
}

// ContentDecision 内容审核结果通知
func (h *HTTPHandler) ContentDecision(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.ContentDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid content decision request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	notification, err := h.svc.NotifyContentDecision(ctx, c.GetInt64("userID"), &req)
	if err != nil {
		h.log.Error(ctx, "Notify content decision failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "审核结果已通知", notification)
}

// RegisterUser 用户注册
func (h *HTTPHandler) RegisterUser(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid register user request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	user, err := h.svc.RegisterUser(ctx, &req)
	if err != nil {
		h.log.Error(ctx, "Register user failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "注册成功", user)
}

// GetUser 查询用户
func (h *HTTPHandler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.GetUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid get user request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	user, err := h.svc.GetUser(ctx, req.UserID)
	if err != nil {
		h.log.Error(ctx, "Get user failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "查询成功", user)
}

// GetUserByUsername 按用户名查询用户
func (h *HTTPHandler) GetUserByUsername(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.GetUserByUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid get user by username request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	user, err := h.svc.GetUserByUsername(ctx, req.Username)
	if err != nil {
		h.log.Error(ctx, "Get user by username failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "查询成功", user)
}
