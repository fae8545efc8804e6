package subscription

import (
	"fmt"
	"sync"
)

// Callback 订阅回调，payload为该主题的最新快照
type Callback func(payload interface{})

// Hub 进程内订阅中心
// 写路径发布变更后，所有订阅对应主题的回调都会收到最新快照。
// 回调在发布协程内同步执行，订阅方不应在回调里做阻塞操作。
type Hub struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[string]map[int64]Callback
}

// NewHub 创建订阅中心
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[int64]Callback),
	}
}

// Topic 构造用户维度的主题名
func Topic(kind string, userID int64) string {
	return fmt.Sprintf("%s:%d", kind, userID)
}

// Subscribe 订阅主题，返回取消订阅函数
// 取消订阅函数可重复调用，重复调用是空操作。
func (h *Hub) Subscribe(topic string, cb Callback) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID

	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int64]Callback)
	}
	h.subs[topic][id] = cb

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[topic]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(h.subs, topic)
				}
			}
		})
	}
}

// Publish 向主题的所有订阅者推送快照
func (h *Hub) Publish(topic string, payload interface{}) {
	h.mu.RLock()
	callbacks := make([]Callback, 0, len(h.subs[topic]))
	for _, cb := range h.subs[topic] {
		callbacks = append(callbacks, cb)
	}
	h.mu.RUnlock()

	// 在锁外执行回调，避免回调内再订阅/退订造成死锁
	for _, cb := range callbacks {
		cb(payload)
	}
}

// SubscriberCount 主题当前订阅数
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
