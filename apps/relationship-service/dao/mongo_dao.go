package dao

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bhakti-social/apps/relationship-service/model"
	"bhakti-social/pkg/database"
)

// relationshipDAO 关系数据访问对象（MongoDB实现）
type relationshipDAO struct {
	db *database.MongoDB
}

// NewRelationshipDAO 创建关系DAO实例
func NewRelationshipDAO(db *database.MongoDB) RelationshipDAO {
	return &relationshipDAO{db: db}
}

// EnsureIndexes 创建必要索引
// pending申请在pair_key上的唯一索引是防止同一配对出现两条待处理申请的最终防线。
func EnsureIndexes(ctx context.Context, db *database.MongoDB) error {
	requests := db.GetCollection(model.CollectionRequests)
	_, err := requests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": model.RequestStatusPending}),
		},
		{
			Keys: bson.D{{Key: "to_user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "from_user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create request indexes: %v", err)
	}

	connections := db.GetCollection(model.CollectionConnections)
	_, err = connections.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "peer_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create connection indexes: %v", err)
	}

	return nil
}

// CreateRequest 创建连接申请
func (d *relationshipDAO) CreateRequest(ctx context.Context, req *model.ConnectionRequest) error {
	_, err := d.db.GetCollection(model.CollectionRequests).InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create connection request: %v", err)
	}
	return nil
}

// GetRequest 按ID获取连接申请
func (d *relationshipDAO) GetRequest(ctx context.Context, requestID int64) (*model.ConnectionRequest, error) {
	var req model.ConnectionRequest
	err := d.db.GetCollection(model.CollectionRequests).
		FindOne(ctx, bson.M{"id": requestID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get connection request: %v", err)
	}
	return &req, nil
}

// DeleteRequest 删除连接申请
func (d *relationshipDAO) DeleteRequest(ctx context.Context, requestID int64) error {
	_, err := d.db.GetCollection(model.CollectionRequests).
		DeleteOne(ctx, bson.M{"id": requestID})
	if err != nil {
		return fmt.Errorf("failed to delete connection request: %v", err)
	}
	return nil
}

// FindPendingBetween 查找配对间任一方向的待处理申请
func (d *relationshipDAO) FindPendingBetween(ctx context.Context, userA, userB int64) (*model.ConnectionRequest, error) {
	var req model.ConnectionRequest
	filter := bson.M{
		"pair_key": model.PairKey(userA, userB),
		"status":   model.RequestStatusPending,
	}
	err := d.db.GetCollection(model.CollectionRequests).FindOne(ctx, filter).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pending request: %v", err)
	}
	return &req, nil
}

// DeletePendingBetween 删除配对间所有待处理申请（两个方向）
func (d *relationshipDAO) DeletePendingBetween(ctx context.Context, userA, userB int64) error {
	filter := bson.M{
		"pair_key": model.PairKey(userA, userB),
		"status":   model.RequestStatusPending,
	}
	_, err := d.db.GetCollection(model.CollectionRequests).DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete pending requests: %v", err)
	}
	return nil
}

// ListRequestsTo 获取发给某用户的申请列表，新的在前
func (d *relationshipDAO) ListRequestsTo(ctx context.Context, userID int64) ([]*model.ConnectionRequest, error) {
	return d.listRequests(ctx, bson.M{"to_user_id": userID})
}

// ListRequestsFrom 获取某用户发出的申请列表，新的在前
func (d *relationshipDAO) ListRequestsFrom(ctx context.Context, userID int64) ([]*model.ConnectionRequest, error) {
	return d.listRequests(ctx, bson.M{"from_user_id": userID})
}

// listRequests 查询申请列表
func (d *relationshipDAO) listRequests(ctx context.Context, filter bson.M) ([]*model.ConnectionRequest, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(model.MaxListLimit)

	cursor, err := d.db.GetCollection(model.CollectionRequests).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.ConnectionRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %v", err)
	}
	return requests, nil
}

// CreateConnection 创建连接边
func (d *relationshipDAO) CreateConnection(ctx context.Context, conn *model.Connection) error {
	_, err := d.db.GetCollection(model.CollectionConnections).InsertOne(ctx, conn)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create connection: %v", err)
	}
	return nil
}

// DeleteConnection 删除连接边
func (d *relationshipDAO) DeleteConnection(ctx context.Context, userID, peerID int64) error {
	filter := bson.M{"user_id": userID, "peer_id": peerID}
	_, err := d.db.GetCollection(model.CollectionConnections).DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %v", err)
	}
	return nil
}

// HasConnection 检查连接边是否存在（点查）
func (d *relationshipDAO) HasConnection(ctx context.Context, userID, peerID int64) (bool, error) {
	filter := bson.M{"user_id": userID, "peer_id": peerID}
	count, err := d.db.GetCollection(model.CollectionConnections).CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check connection: %v", err)
	}
	return count > 0, nil
}

// ListConnections 获取某用户的连接列表，新的在前
func (d *relationshipDAO) ListConnections(ctx context.Context, userID int64) ([]*model.Connection, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "connected_at", Value: -1}}).
		SetLimit(model.MaxListLimit)

	cursor, err := d.db.GetCollection(model.CollectionConnections).
		Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %v", err)
	}
	defer cursor.Close(ctx)

	var connections []*model.Connection
	if err = cursor.All(ctx, &connections); err != nil {
		return nil, fmt.Errorf("failed to decode connections: %v", err)
	}
	return connections, nil
}
