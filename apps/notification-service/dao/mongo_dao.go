package dao

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bhakti-social/apps/notification-service/model"
	"bhakti-social/pkg/database"
)

// notificationDAO 通知数据访问对象（MongoDB实现）
type notificationDAO struct {
	db *database.MongoDB
}

// NewNotificationDAO 创建通知DAO实例
func NewNotificationDAO(db *database.MongoDB) NotificationDAO {
	return &notificationDAO{db: db}
}

// EnsureIndexes 创建必要索引
func EnsureIndexes(ctx context.Context, db *database.MongoDB) error {
	notifications := db.GetCollection(model.CollectionNotifications)
	_, err := notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %v", err)
	}
	return nil
}

// CreateNotification 创建通知
func (d *notificationDAO) CreateNotification(ctx context.Context, n *model.Notification) error {
	_, err := d.db.GetCollection(model.CollectionNotifications).InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to create notification: %v", err)
	}
	return nil
}

// GetNotification 获取某用户的单条通知
func (d *notificationDAO) GetNotification(ctx context.Context, userID, notificationID int64) (*model.Notification, error) {
	var n model.Notification
	filter := bson.M{"id": notificationID, "user_id": userID}
	err := d.db.GetCollection(model.CollectionNotifications).FindOne(ctx, filter).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %v", err)
	}
	return &n, nil
}

// ListByUser 获取某用户在since之后的通知，新的在前
func (d *notificationDAO) ListByUser(ctx context.Context, userID int64, since time.Time, unreadOnly bool) ([]*model.Notification, error) {
	filter := bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gt": since},
	}
	if unreadOnly {
		filter["read"] = false
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(model.MaxListLimit)

	cursor, err := d.db.GetCollection(model.CollectionNotifications).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []*model.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// MarkRead 标记单条通知已读，重复标记是空操作
func (d *notificationDAO) MarkRead(ctx context.Context, userID, notificationID int64) error {
	filter := bson.M{"id": notificationID, "user_id": userID}
	result, err := d.db.GetCollection(model.CollectionNotifications).
		UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead 标记某用户全部通知已读
func (d *notificationDAO) MarkAllRead(ctx context.Context, userID int64) error {
	filter := bson.M{"user_id": userID, "read": false}
	_, err := d.db.GetCollection(model.CollectionNotifications).
		UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark all notifications read: %v", err)
	}
	return nil
}

// CountUnread 统计某用户在since之后的未读通知数
func (d *notificationDAO) CountUnread(ctx context.Context, userID int64, since time.Time) (int64, error) {
	filter := bson.M{
		"user_id":    userID,
		"read":       false,
		"created_at": bson.M{"$gt": since},
	}
	count, err := d.db.GetCollection(model.CollectionNotifications).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %v", err)
	}
	return count, nil
}

// DeleteOlderThan 删除某用户早于cutoff的通知
func (d *notificationDAO) DeleteOlderThan(ctx context.Context, userID int64, cutoff time.Time) error {
	filter := bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$lte": cutoff},
	}
	_, err := d.db.GetCollection(model.CollectionNotifications).DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete expired notifications: %v", err)
	}
	return nil
}
