package model

import "time"

// Notification 通知记录
// 超过保留时长的通知在写路径惰性清理，不依赖后台任务。
type Notification struct {
	ID            int64     `json:"id" bson:"id"`
	UserID        int64     `json:"user_id" bson:"user_id"` // 接收者
	Type          string    `json:"type" bson:"type"`
	Title         string    `json:"title" bson:"title"`
	Message       string    `json:"message,omitempty" bson:"message,omitempty"`
	AdminComment  string    `json:"admin_comment,omitempty" bson:"admin_comment,omitempty"`
	FromUserID    int64     `json:"from_user_id,omitempty" bson:"from_user_id,omitempty"`
	FromUserName  string    `json:"from_user_name,omitempty" bson:"from_user_name,omitempty"`
	FromUserPhoto string    `json:"from_user_photo,omitempty" bson:"from_user_photo,omitempty"`
	RequestID     int64     `json:"request_id,omitempty" bson:"request_id,omitempty"`
	Read          bool      `json:"read" bson:"read"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// User 用户注册表记录（PostgreSQL）
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Nickname  string    `json:"nickname" gorm:"size:64"`
	Photo     string    `json:"photo" gorm:"size:256"`
	Role      string    `json:"role" gorm:"size:16;default:member"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// RelationshipEvent 上游关系服务发布的事件
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

// ListNotificationsRequest 查询通知列表请求
type ListNotificationsRequest struct {
	UserID     int64 `json:"user_id" binding:"required"`
	UnreadOnly bool  `json:"unread_only"`
}

// GetNotificationRequest 查询单条通知请求
type GetNotificationRequest struct {
	UserID         int64 `json:"user_id" binding:"required"`
	NotificationID int64 `json:"notification_id" binding:"required"`
}

// MarkReadRequest 标记已读请求
type MarkReadRequest struct {
	UserID         int64 `json:"user_id" binding:"required"`
	NotificationID int64 `json:"notification_id" binding:"required"`
}

// MarkAllReadRequest 全部标记已读请求
type MarkAllReadRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// UnreadCountRequest 未读数查询请求
type UnreadCountRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// BroadcastRequest 全员广播请求
type BroadcastRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ContentDecisionRequest 内容审核结果通知请求
type ContentDecisionRequest struct {
	UserID       int64  `json:"user_id" binding:"required"`
	ContentTitle string `json:"content_title" binding:"required"`
	Approved     bool   `json:"approved"`
	AdminComment string `json:"admin_comment"`
}

// RegisterUserRequest 用户注册请求
type RegisterUserRequest struct {
	Username string `json:"username" binding:"required"`
	Nickname string `json:"nickname"`
	Photo    string `json:"photo"`
}

// GetUserRequest 查询用户请求
type GetUserRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// GetUserByUsernameRequest 按用户名查询用户请求
type GetUserByUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}
