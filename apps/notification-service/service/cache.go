package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bhakti-social/apps/notification-service/model"
	"bhakti-social/pkg/redis"
)

// UnreadCache 未读数缓存接口
type UnreadCache interface {
	GetUnread(ctx context.Context, userID int64) (int64, bool)
	SetUnread(ctx context.Context, userID int64, count int64)
	InvalidateUnread(ctx context.Context, userID int64)
}

// redisUnreadCache 基于Redis的未读数缓存
// 缓存失效或Redis不可用时直接回源Mongo计数。
type redisUnreadCache struct {
	redis *redis.RedisClient
	ttl   time.Duration
}

// NewUnreadCache 创建未读数缓存实例
func NewUnreadCache(redisClient *redis.RedisClient, ttl time.Duration) UnreadCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &redisUnreadCache{
		redis: redisClient,
		ttl:   ttl,
	}
}

// unreadKey 未读数缓存键
func unreadKey(userID int64) string {
	return fmt.Sprintf("%s:%d", model.CacheKeyUnread, userID)
}

// GetUnread 查询缓存的未读数
func (c *redisUnreadCache) GetUnread(ctx context.Context, userID int64) (int64, bool) {
	value, err := c.redis.Get(ctx, unreadKey(userID))
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetUnread 写入未读数缓存
func (c *redisUnreadCache) SetUnread(ctx context.Context, userID int64, count int64) {
	_ = c.redis.Set(ctx, unreadKey(userID), count, c.ttl)
}

// InvalidateUnread 失效未读数缓存
func (c *redisUnreadCache) InvalidateUnread(ctx context.Context, userID int64) {
	_ = c.redis.Del(ctx, unreadKey(userID))
}
