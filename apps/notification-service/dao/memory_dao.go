package dao

import (
	"context"
	"sort"
	"sync"
	"time"

	"bhakti-social/apps/notification-service/model"
)

// MemoryNotificationDAO 通知DAO的内存实现，供单元测试使用
type MemoryNotificationDAO struct {
	mu            sync.RWMutex
	notifications map[int64]*model.Notification
}

// NewMemoryNotificationDAO 创建内存通知DAO
func NewMemoryNotificationDAO() *MemoryNotificationDAO {
	return &MemoryNotificationDAO{
		notifications: make(map[int64]*model.Notification),
	}
}

// CreateNotification 创建通知
func (d *MemoryNotificationDAO) CreateNotification(ctx context.Context, n *model.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cloned := *n
	d.notifications[n.ID] = &cloned
	return nil
}

// GetNotification 获取某用户的单条通知
func (d *MemoryNotificationDAO) GetNotification(ctx context.Context, userID, notificationID int64) (*model.Notification, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n, ok := d.notifications[notificationID]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	cloned := *n
	return &cloned, nil
}

// ListByUser 获取某用户在since之后的通知，新的在前
func (d *MemoryNotificationDAO) ListByUser(ctx context.Context, userID int64, since time.Time, unreadOnly bool) ([]*model.Notification, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*model.Notification, 0)
	for _, n := range d.notifications {
		if n.UserID != userID || !n.CreatedAt.After(since) {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		cloned := *n
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// MarkRead 标记单条通知已读
func (d *MemoryNotificationDAO) MarkRead(ctx context.Context, userID, notificationID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.notifications[notificationID]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Read = true
	return nil
}

// MarkAllRead 标记某用户全部通知已读
func (d *MemoryNotificationDAO) MarkAllRead(ctx context.Context, userID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, n := range d.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

// CountUnread 统计某用户在since之后的未读数
func (d *MemoryNotificationDAO) CountUnread(ctx context.Context, userID int64, since time.Time) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var count int64
	for _, n := range d.notifications {
		if n.UserID == userID && !n.Read && n.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// DeleteOlderThan 删除某用户早于cutoff的通知
func (d *MemoryNotificationDAO) DeleteOlderThan(ctx context.Context, userID int64, cutoff time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, n := range d.notifications {
		if n.UserID == userID && !n.CreatedAt.After(cutoff) {
			delete(d.notifications, id)
		}
	}
	return nil
}

// Count 当前存储的通知总数，供测试断言清理效果
func (d *MemoryNotificationDAO) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.notifications)
}

// MemoryUserDAO 用户DAO的内存实现，供单元测试使用
type MemoryUserDAO struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*model.User
}

// NewMemoryUserDAO 创建内存用户DAO
func NewMemoryUserDAO() *MemoryUserDAO {
	return &MemoryUserDAO{users: make(map[int64]*model.User)}
}

// CreateUser 创建用户
func (d *MemoryUserDAO) CreateUser(ctx context.Context, user *model.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.users {
		if existing.Username == user.Username {
			return ErrDuplicateUser
		}
	}

	d.nextID++
	user.ID = d.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	cloned := *user
	d.users[user.ID] = &cloned
	return nil
}

// GetUserByID 按ID查询用户
func (d *MemoryUserDAO) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cloned := *user
	return &cloned, nil
}

// GetUserByUsername 按用户名查询用户
func (d *MemoryUserDAO) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, user := range d.users {
		if user.Username == username {
			cloned := *user
			return &cloned, nil
		}
	}
	return nil, ErrNotFound
}

// ListUserIDs 获取全部用户ID
func (d *MemoryUserDAO) ListUserIDs(ctx context.Context) ([]int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]int64, 0, len(d.users))
	for id := range d.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
