package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"bhakti-social/apps/notification-service/model"
	"bhakti-social/pkg/logger"
)

// EventConsumer 关系事件消费处理器
// 把上游关系服务的事件转成站内通知。
type EventConsumer struct {
	svc *Service
	log logger.Logger
}

// NewEventConsumer 创建事件消费处理器
func NewEventConsumer(svc *Service, log logger.Logger) *EventConsumer {
	return &EventConsumer{
		svc: svc,
		log: log,
	}
}

// HandleMessage 处理单条Kafka消息
// 返回nil才会提交offset；通知写入失败的消息会被重新消费。
func (c *EventConsumer) HandleMessage(msg *sarama.ConsumerMessage) error {
	ctx := context.Background()

	var event model.RelationshipEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// 坏消息重试也无济于事，记录后跳过
		c.log.Error(ctx, "Failed to parse relationship event, skipping",
			logger.F("topic", msg.Topic),
			logger.F("offset", msg.Offset),
			logger.F("error", err.Error()))
		return nil
	}

	switch event.Type {
	case model.EventTypeRequestSent:
		return c.handleRequestSent(ctx, &event)
	case model.EventTypeRequestAccepted:
		return c.handleRequestAccepted(ctx, &event)
	default:
		// 其他事件类型不产生通知
		return nil
	}
}

// handleRequestSent 收到连接申请，通知接收方
func (c *EventConsumer) handleRequestSent(ctx context.Context, event *model.RelationshipEvent) error {
	_, err := c.svc.Notify(ctx, &model.Notification{
		UserID:        event.ToUserID,
		Type:          model.TypeConnectionRequest,
		Title:         "收到新的连接申请",
		Message:       event.Message,
		FromUserID:    event.FromUserID,
		FromUserName:  event.FromUserName,
		FromUserPhoto: event.FromUserPhoto,
		RequestID:     event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("failed to notify request recipient: %v", err)
	}
	return nil
}

// handleRequestAccepted 申请被接受，通知发送方
func (c *EventConsumer) handleRequestAccepted(ctx context.Context, event *model.RelationshipEvent) error {
	_, err := c.svc.Notify(ctx, &model.Notification{
		UserID:       event.FromUserID,
		Type:         model.TypeConnectionAccepted,
		Title:        "连接申请已被接受",
		Message:      fmt.Sprintf("%s接受了您的连接申请", event.ToUserName),
		FromUserID:   event.ToUserID,
		FromUserName: event.ToUserName,
		RequestID:    event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("failed to notify request sender: %v", err)
	}
	return nil
}
