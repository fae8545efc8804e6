package service

import (
	"context"

	"bhakti-social/apps/relationship-service/model"
	"bhakti-social/pkg/logger"
	"bhakti-social/pkg/subscription"
)

// SubscribePending 订阅发给某用户的待处理申请流
// 订阅建立时立即推一次当前快照，之后每次变更推送最新快照。
func (s *Service) SubscribePending(ctx context.Context, userID int64, cb subscription.Callback) func() {
	unsubscribe := s.hub.Subscribe(subscription.Topic(model.StreamPending, userID), cb)
	s.refreshPending(ctx, userID)
	return unsubscribe
}

// SubscribeSent 订阅某用户发出的申请流
func (s *Service) SubscribeSent(ctx context.Context, userID int64, cb subscription.Callback) func() {
	unsubscribe := s.hub.Subscribe(subscription.Topic(model.StreamSent, userID), cb)
	s.refreshSent(ctx, userID)
	return unsubscribe
}

// SubscribeConnections 订阅某用户的连接列表流
func (s *Service) SubscribeConnections(ctx context.Context, userID int64, cb subscription.Callback) func() {
	unsubscribe := s.hub.Subscribe(subscription.Topic(model.StreamConnections, userID), cb)
	s.refreshConnections(ctx, userID)
	return unsubscribe
}

// refreshPending 重新查询并推送待处理申请快照
func (s *Service) refreshPending(ctx context.Context, userID int64) {
	topic := subscription.Topic(model.StreamPending, userID)
	if s.hub.SubscriberCount(topic) == 0 {
		return
	}
	requests, err := s.dao.ListRequestsTo(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "Failed to refresh pending stream",
			logger.F("userID", userID),
			logger.F("error", err.Error()))
		return
	}
	s.hub.Publish(topic, requests)
}

// refreshSent 重新查询并推送已发申请快照
func (s *Service) refreshSent(ctx context.Context, userID int64) {
	topic := subscription.Topic(model.StreamSent, userID)
	if s.hub.SubscriberCount(topic) == 0 {
		return
	}
	requests, err := s.dao.ListRequestsFrom(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "Failed to refresh sent stream",
			logger.F("userID", userID),
			logger.F("error", err.Error()))
		return
	}
	s.hub.Publish(topic, requests)
}

// refreshConnections 重新查询并推送连接列表快照
func (s *Service) refreshConnections(ctx context.Context, userID int64) {
	topic := subscription.Topic(model.StreamConnections, userID)
	if s.hub.SubscriberCount(topic) == 0 {
		return
	}
	connections, err := s.dao.ListConnections(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "Failed to refresh connections stream",
			logger.F("userID", userID),
			logger.F("error", err.Error()))
		return
	}
	s.hub.Publish(topic, connections)
}
