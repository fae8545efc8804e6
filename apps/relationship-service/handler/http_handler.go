package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bhakti-social/apps/relationship-service/model"
	"bhakti-social/apps/relationship-service/service"
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
	api := r.Group("/api/v1/relationship")
	{
		api.POST("/send", h.SendRequest)             // 发送连接申请
		api.POST("/accept", h.AcceptRequest)         // 接受连接申请
		api.POST("/reject", h.RejectRequest)         // 拒绝连接申请
		api.POST("/cancel", h.CancelRequest)         // 撤回连接申请
		api.POST("/remove", h.RemoveConnection)      // 解除连接
		api.POST("/status", h.GetStatus)             // 查询关系状态
		api.POST("/connections", h.ListConnections)  // 查询连接列表
		api.POST("/pending", h.ListPending)          // 查询收到的申请
		api.POST("/sent", h.ListSent)                // 查询发出的申请
	}
}

// statusForError 业务错误到HTTP状态码的映射
func statusForError(err error) int {
	switch err {
	case nil:
		return http.StatusOK
	case service.ErrSelfRequest, service.ErrDuplicateRelationship:
		return http.StatusBadRequest
	case service.ErrRequestNotFound:
		return http.StatusNotFound
	case service.ErrNotRequestRecipient, service.ErrNotRequestSender:
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

// SendRequest 发送连接申请
func (h *HTTPHandler) SendRequest(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.SendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid send request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	request, err := h.svc.SendRequest(ctx, &req)
	if err != nil {
		h.log.Error(ctx, "Send connection request failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "连接申请已发送，等待对方处理", request)
}

// AcceptRequest 接受连接申请
func (h *HTTPHandler) AcceptRequest(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.RespondRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid accept request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	err := h.svc.AcceptRequest(ctx, req.RequestID, req.UserID)
	if err != nil {
		h.log.Error(ctx, "Accept connection request failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "已接受连接申请", nil)
}

// RejectRequest 拒绝连接申请
func (h *HTTPHandler) RejectRequest(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.RespondRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid reject request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	err := h.svc.RejectRequest(ctx, req.RequestID, req.UserID)
	if err != nil {
		h.log.Error(ctx, "Reject connection request failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "已拒绝连接申请", nil)
}

// CancelRequest 撤回连接申请
func (h *HTTPHandler) CancelRequest(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.RespondRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid cancel request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	err := h.svc.CancelRequest(ctx, req.RequestID, req.UserID)
	if err != nil {
		h.log.Error(ctx, "Cancel connection request failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "已撤回连接申请", nil)
}

// RemoveConnection 解除连接
func (h *HTTPHandler) RemoveConnection(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.RemoveConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid remove connection request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	err := h.svc.RemoveConnection(ctx, req.UserID, req.PeerID)
	if err != nil {
		h.log.Error(ctx, "Remove connection failed", logger.F("error", err.Error()))
	}
	h.respond(c, err, "已解除连接", nil)
}

// GetStatus 查询两个用户之间的关系状态
func (h *HTTPHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid status request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	status, err := h.svc.GetStatus(ctx, req.UserID, req.PeerID)
	if err != nil {
		h.log.Error(ctx, "Get relationship status failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, gin.H{
		"success": err == nil,
		"data":    gin.H{"status": status},
	}, err)
}

// ListConnections 查询连接列表
func (h *HTTPHandler) ListConnections(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid list connections request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	connections, err := h.svc.ListConnections(ctx, req.UserID)
	if err != nil {
		h.log.Error(ctx, "List connections failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, gin.H{
		"success": err == nil,
		"data":    connections,
		"total":   len(connections),
	}, err)
}

// ListPending 查询收到的待处理申请
func (h *HTTPHandler) ListPending(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid list pending request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	requests, err := h.svc.ListPending(ctx, req.UserID)
	if err != nil {
		h.log.Error(ctx, "List pending requests failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, gin.H{
		"success": err == nil,
		"data":    requests,
		"total":   len(requests),
	}, err)
}

// ListSent 查询发出的待处理申请
func (h *HTTPHandler) ListSent(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error(ctx, "Invalid list sent request", logger.F("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	requests, err := h.svc.ListSent(ctx, req.UserID)
	if err != nil {
		h.log.Error(ctx, "List sent requests failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, gin.H{
		"success": err == nil,
		"data":    requests,
		"total":   len(requests),
	}, err)
}
