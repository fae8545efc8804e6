package dao

import (
	"context"
	"errors"
	"time"

	"bhakti-social/apps/notification-service/model"
)

// 数据访问层错误
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateUser = errors.New("username already exists")
)

// NotificationDAO 通知数据访问接口
type NotificationDAO interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	GetNotification(ctx context.Context, userID, notificationID int64) (*model.Notification, error)
	ListByUser(ctx context.Context, userID int64, since time.Time, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	CountUnread(ctx context.Context, userID int64, since time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, userID int64, cutoff time.Time) error
}

// UserDAO 用户注册表数据访问接口
type UserDAO interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}
