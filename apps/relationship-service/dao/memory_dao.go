package dao

import (
	"context"
	"sort"
	"sync"

	"bhakti-social/apps/relationship-service/model"
)

// MemoryRelationshipDAO 内存实现，供单元测试和本地调试使用
// 语义与Mongo实现保持一致，包括pending配对唯一约束。
type MemoryRelationshipDAO struct {
	mu          sync.RWMutex
	requests    map[int64]*model.ConnectionRequest
	connections map[string]*model.Connection // key: "userID:peerID"
}

// NewMemoryRelationshipDAO 创建内存DAO实例
func NewMemoryRelationshipDAO() *MemoryRelationshipDAO {
	return &MemoryRelationshipDAO{
		requests:    make(map[int64]*model.ConnectionRequest),
		connections: make(map[string]*model.Connection),
	}
}

// CreateRequest 创建连接申请
func (d *MemoryRelationshipDAO) CreateRequest(ctx context.Context, req *model.ConnectionRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.requests[req.ID]; exists {
		return ErrDuplicateKey
	}
	// 模拟pair_key上的pending唯一索引
	for _, existing := range d.requests {
		if existing.PairKey == req.PairKey && existing.Status == model.RequestStatusPending &&
			req.Status == model.RequestStatusPending {
			return ErrDuplicateKey
		}
	}

	cloned := *req
	d.requests[req.ID] = &cloned
	return nil
}

// GetRequest 按ID获取连接申请
func (d *MemoryRelationshipDAO) GetRequest(ctx context.Context, requestID int64) (*model.ConnectionRequest, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	req, ok := d.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	cloned := *req
	return &cloned, nil
}

// DeleteRequest 删除连接申请
func (d *MemoryRelationshipDAO) DeleteRequest(ctx context.Context, requestID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.requests, requestID)
	return nil
}

// FindPendingBetween 查找配对间任一方向的待处理申请
func (d *MemoryRelationshipDAO) FindPendingBetween(ctx context.Context, userA, userB int64) (*model.ConnectionRequest, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	pairKey := model.PairKey(userA, userB)
	for _, req := range d.requests {
		if req.PairKey == pairKey && req.Status == model.RequestStatusPending {
			cloned := *req
			return &cloned, nil
		}
	}
	return nil, ErrNotFound
}

// DeletePendingBetween 删除配对间所有待处理申请
func (d *MemoryRelationshipDAO) DeletePendingBetween(ctx context.Context, userA, userB int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pairKey := model.PairKey(userA, userB)
	for id, req := range d.requests {
		if req.PairKey == pairKey && req.Status == model.RequestStatusPending {
			delete(d.requests, id)
		}
	}
	return nil
}

// ListRequestsTo 获取发给某用户的申请列表，新的在前
func (d *MemoryRelationshipDAO) ListRequestsTo(ctx context.Context, userID int64) ([]*model.ConnectionRequest, error) {
	return d.listRequests(func(req *model.ConnectionRequest) bool {
		return req.ToUserID == userID
	}), nil
}

// ListRequestsFrom 获取某用户发出的申请列表，新的在前
func (d *MemoryRelationshipDAO) ListRequestsFrom(ctx context.Context, userID int64) ([]*model.ConnectionRequest, error) {
	return d.listRequests(func(req *model.ConnectionRequest) bool {
		return req.FromUserID == userID
	}), nil
}

// listRequests 过滤并按时间倒序返回申请
func (d *MemoryRelationshipDAO) listRequests(match func(*model.ConnectionRequest) bool) []*model.ConnectionRequest {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*model.ConnectionRequest, 0)
	for _, req := range d.requests {
		if match(req) {
			cloned := *req
			result = append(result, &cloned)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// CreateConnection 创建连接边
func (d *MemoryRelationshipDAO) CreateConnection(ctx context.Context, conn *model.Connection) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := connKey(conn.UserID, conn.PeerID)
	if _, exists := d.connections[key]; exists {
		return ErrDuplicateKey
	}
	cloned := *conn
	d.connections[key] = &cloned
	return nil
}

// DeleteConnection 删除连接边
func (d *MemoryRelationshipDAO) DeleteConnection(ctx context.Context, userID, peerID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.connections, connKey(userID, peerID))
	return nil
}

// HasConnection 检查连接边是否存在
func (d *MemoryRelationshipDAO) HasConnection(ctx context.Context, userID, peerID int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.connections[connKey(userID, peerID)]
	return ok, nil
}

// ListConnections 获取某用户的连接列表，新的在前
func (d *MemoryRelationshipDAO) ListConnections(ctx context.Context, userID int64) ([]*model.Connection, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*model.Connection, 0)
	for _, conn := range d.connections {
		if conn.UserID == userID {
			cloned := *conn
			result = append(result, &cloned)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ConnectedAt.After(result[j].ConnectedAt)
	})
	return result, nil
}

// connKey 连接边的存储键
func connKey(userID, peerID int64) string {
	return model.PairKey(userID, peerID) + ":" + direction(userID, peerID)
}

// direction 区分同一配对的两个方向
func direction(userID, peerID int64) string {
	if userID < peerID {
		return "fwd"
	}
	return "rev"
}
