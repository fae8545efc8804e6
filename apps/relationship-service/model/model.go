package model

import (
	"fmt"
	"time"
)

// ConnectionRequest 连接申请记录
// 申请被接受/拒绝/撤回后物理删除，不保留已处理记录。
type ConnectionRequest struct {
	ID            int64     `json:"id" bson:"id"`
	PairKey       string    `json:"-" bson:"pair_key"` // 无序配对键 min:max
	FromUserID    int64     `json:"from_user_id" bson:"from_user_id"`
	FromUserName  string    `json:"from_user_name" bson:"from_user_name"`
	FromUserPhoto string    `json:"from_user_photo,omitempty" bson:"from_user_photo,omitempty"`
	ToUserID      int64     `json:"to_user_id" bson:"to_user_id"`
	ToUserName    string    `json:"to_user_name" bson:"to_user_name"`
	Message       string    `json:"message,omitempty" bson:"message,omitempty"`
	Status        string    `json:"status" bson:"status"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Connection 单向连接边
// 一条互相连接的关系由两条方向相反的边组成。
type Connection struct {
	UserID      int64     `json:"user_id" bson:"user_id"`
	PeerID      int64     `json:"peer_id" bson:"peer_id"`
	PeerName    string    `json:"peer_name" bson:"peer_name"`
	ConnectedAt time.Time `json:"connected_at" bson:"connected_at"`
}

// RelationshipEvent 关系变更事件，发布到Kafka供下游消费
type RelationshipEvent struct {
	Type          string `json:"type"`
	RequestID     int64  `json:"request_id,omitempty"`
	FromUserID    int64  `json:"from_user_id"`
	FromUserName  string `json:"from_user_name,omitempty"`
	FromUserPhoto string `json:"from_user_photo,omitempty"`
	ToUserID      int64  `json:"to_user_id"`
	ToUserName    string `json:"to_user_name,omitempty"`
	Message       string `json:"message,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

// PairKey 计算无序配对键，两个方向得到同一个键
func PairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// SendRequestRequest 发送连接申请请求
type SendRequestRequest struct {
	FromUserID    int64  `json:"from_user_id" binding:"required"`
	FromUserName  string `json:"from_user_name" binding:"required"`
	FromUserPhoto string `json:"from_user_photo"`
	ToUserID      int64  `json:"to_user_id" binding:"required"`
	ToUserName    string `json:"to_user_name" binding:"required"`
	Message       string `json:"message"`
}

// RespondRequestRequest 处理连接申请请求（接受/拒绝/撤回）
type RespondRequestRequest struct {
	RequestID int64 `json:"request_id" binding:"required"`
	UserID    int64 `json:"user_id" binding:"required"`
}

// RemoveConnectionRequest 删除连接请求
type RemoveConnectionRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	PeerID int64 `json:"peer_id" binding:"required"`
}

// StatusRequest 查询关系状态请求
type StatusRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	PeerID int64 `json:"peer_id" binding:"required"`
}

// ListRequest 按用户查询列表请求
type ListRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}
