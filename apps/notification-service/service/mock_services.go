package service

import (
	"context"
	"sync"
)

// MockUnreadCache 未读数缓存的内存实现，供单元测试使用
type MockUnreadCache struct {
	mu     sync.Mutex
	counts map[int64]int64

	Hits   int
	Misses int
}

// NewMockUnreadCache 创建Mock未读数缓存
func NewMockUnreadCache() *MockUnreadCache {
	return &MockUnreadCache{counts: make(map[int64]int64)}
}

// GetUnread 查询缓存
func (m *MockUnreadCache) GetUnread(ctx context.Context, userID int64) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count, ok := m.counts[userID]
	if ok {
		m.Hits++
	} else {
		m.Misses++
	}
	return count, ok
}

// SetUnread 写入缓存
func (m *MockUnreadCache) SetUnread(ctx context.Context, userID int64, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[userID] = count
}

// InvalidateUnread 失效缓存
func (m *MockUnreadCache) InvalidateUnread(ctx context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, userID)
}
