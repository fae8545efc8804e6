package dao

import (
	"context"
	"errors"

	"bhakti-social/apps/relationship-service/model"
)

// 数据访问层错误
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// RelationshipDAO 关系数据访问接口
type RelationshipDAO interface {
	// 申请操作
	CreateRequest(ctx context.Context, req *model.ConnectionRequest) error
	GetRequest(ctx context.Context, requestID int64) (*model.ConnectionRequest, error)
	DeleteRequest(ctx context.Context, requestID int64) error
	FindPendingBetween(ctx context.Context, userA, userB int64) (*model.ConnectionRequest, error)
	DeletePendingBetween(ctx context.Context, userA, userB int64) error
	ListRequestsTo(ctx context.Context, userID int64) ([]*model.ConnectionRequest, error)
	ListRequestsFrom(ctx context.Context, userID int64) ([]*model.ConnectionRequest, error)

	// 连接边操作
	CreateConnection(ctx context.Context, conn *model.Connection) error
	DeleteConnection(ctx context.Context, userID, peerID int64) error
	HasConnection(ctx context.Context, userID, peerID int64) (bool, error)
	ListConnections(ctx context.Context, userID int64) ([]*model.Connection, error)
}
