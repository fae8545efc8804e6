package service

import (
	"context"
	"sync"

	"bhakti-social/apps/relationship-service/model"
)

// MockEventService 事件服务的内存实现，记录发布过的事件供测试断言
type MockEventService struct {
	mu     sync.Mutex
	Events []*model.RelationshipEvent
}

// NewMockEventService 创建Mock事件服务
func NewMockEventService() *MockEventService {
	return &MockEventService{}
}

// PublishRelationshipEvent 记录事件
func (m *MockEventService) PublishRelationshipEvent(ctx context.Context, event *model.RelationshipEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

// EventsOfType 按类型过滤已记录事件
func (m *MockEventService) EventsOfType(eventType string) []*model.RelationshipEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.RelationshipEvent
	for _, e := range m.Events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockPairLocker 配对锁的内存实现
type MockPairLocker struct {
	mu    sync.Mutex
	locks map[string]bool
}

// NewMockPairLocker 创建Mock配对锁
func NewMockPairLocker() *MockPairLocker {
	return &MockPairLocker{locks: make(map[string]bool)}
}

// AcquirePairLock 尝试获取配对锁
func (m *MockPairLocker) AcquirePairLock(ctx context.Context, userA, userB int64) (func(), bool) {
	key := model.PairKey(userA, userB)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return func() {}, false
	}
	m.locks[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.locks, key)
		})
	}, true
}
