package service

import (
	"context"
	"fmt"
	"time"

	"bhakti-social/apps/relationship-service/model"
	"bhakti-social/pkg/logger"
	"bhakti-social/pkg/redis"
)

// lockService 基于Redis SetNX的配对锁实现
// Redis不可用时放行（fail-open），此时并发冲突由Mongo的pending唯一索引兜底。
type lockService struct {
	redis  *redis.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

// NewPairLocker 创建配对锁实例
func NewPairLocker(redisClient *redis.RedisClient, ttl time.Duration, log logger.Logger) PairLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &lockService{
		redis:  redisClient,
		ttl:    ttl,
		logger: log,
	}
}

// AcquirePairLock 尝试获取配对锁
func (s *lockService) AcquirePairLock(ctx context.Context, userA, userB int64) (func(), bool) {
	key := fmt.Sprintf("%s:%s", model.LockKeyPair, model.PairKey(userA, userB))

	ok, err := s.redis.SetNX(ctx, key, 1, s.ttl)
	if err != nil {
		s.logger.Warn(ctx, "Pair lock unavailable, proceeding without lock",
			logger.F("key", key),
			logger.F("error", err.Error()))
		return func() {}, true
	}
	if !ok {
		return func() {}, false
	}

	return func() {
		if err := s.redis.Del(context.Background(), key); err != nil {
			s.logger.Warn(ctx, "Failed to release pair lock", logger.F("key", key))
		}
	}, true
}
