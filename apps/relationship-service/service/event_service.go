package service

import (
	"context"
	"encoding/json"
	"fmt"

	"bhakti-social/apps/relationship-service/model"
	"bhakti-social/pkg/kafka"
	"bhakti-social/pkg/logger"
)

// eventService 基于Kafka的事件发布实现
type eventService struct {
	producer *kafka.Producer
	logger   logger.Logger
}

// NewEventService 创建事件服务实例
func NewEventService(producer *kafka.Producer, log logger.Logger) EventService {
	return &eventService{
		producer: producer,
		logger:   log,
	}
}

// PublishRelationshipEvent 发布关系变更事件
// 以配对键作为消息key，保证同一配对的事件落在同一分区内有序。
func (s *eventService) PublishRelationshipEvent(ctx context.Context, event *model.RelationshipEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal relationship event: %v", err)
	}

	key := model.PairKey(event.FromUserID, event.ToUserID)
	if err := s.producer.SendMessage(model.TopicRelationshipEvents, []byte(key), value); err != nil {
		return fmt.Errorf("failed to send relationship event: %v", err)
	}

	s.logger.Info(ctx, "Relationship event published",
		logger.F("type", event.Type),
		logger.F("fromUserID", event.FromUserID),
		logger.F("toUserID", event.ToUserID))
	return nil
}
