package service

import (
	"context"
	"fmt"
	"time"

	"bhakti-social/apps/relationship-service/dao"
	"bhakti-social/apps/relationship-service/model"
	"bhakti-social/pkg/logger"
	"bhakti-social/pkg/snowflake"
	"bhakti-social/pkg/subscription"
)

// Service 关系服务
type Service struct {
	dao    dao.RelationshipDAO
	events EventService
	locker PairLocker
	hub    *subscription.Hub
	idGen  *snowflake.Snowflake
	logger logger.Logger
}

// NewService 创建关系服务实例
func NewService(relationshipDAO dao.RelationshipDAO, events EventService, locker PairLocker, hub *subscription.Hub, log logger.Logger) *Service {
	idGen, err := snowflake.NewSnowflake(1)
	if err != nil {
		panic(fmt.Sprintf("Failed to create snowflake generator: %v", err))
	}

	return &Service{
		dao:    relationshipDAO,
		events: events,
		locker: locker,
		hub:    hub,
		idGen:  idGen,
		logger: log,
	}
}

// SendRequest 发送连接申请
// 同一配对同时只允许一条待处理申请，任一方向均算；已连接的配对不能再发申请。
func (s *Service) SendRequest(ctx context.Context, req *model.SendRequestRequest) (*model.ConnectionRequest, error) {
	if req.FromUserID == req.ToUserID {
		return nil, ErrSelfRequest
	}

	release, acquired := s.locker.AcquirePairLock(ctx, req.FromUserID, req.ToUserID)
	if !acquired {
		return nil, ErrDuplicateRelationship
	}
	defer release()

	connected, err := s.dao.HasConnection(ctx, req.FromUserID, req.ToUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check connection: %v", err)
	}
	if connected {
		return nil, ErrDuplicateRelationship
	}

	if _, err := s.dao.FindPendingBetween(ctx, req.FromUserID, req.ToUserID); err == nil {
		return nil, ErrDuplicateRelationship
	} else if err != dao.ErrNotFound {
		return nil, fmt.Errorf("failed to check pending request: %v", err)
	}

	request := &model.ConnectionRequest{
		ID:            s.idGen.Generate(),
		PairKey:       model.PairKey(req.FromUserID, req.ToUserID),
		FromUserID:    req.FromUserID,
		FromUserName:  req.FromUserName,
		FromUserPhoto: req.FromUserPhoto,
		ToUserID:      req.ToUserID,
		ToUserName:    req.ToUserName,
		Message:       req.Message,
		Status:        model.RequestStatusPending,
		CreatedAt:     time.Now(),
	}

	if err := s.dao.CreateRequest(ctx, request); err != nil {
		if err == dao.ErrDuplicateKey {
			// 唯一索引兜住了并发窗口内的重复申请
			return nil, ErrDuplicateRelationship
		}
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	s.logger.Info(ctx, "Connection request sent",
		logger.F("requestID", request.ID),
		logger.F("fromUserID", req.FromUserID),
		logger.F("toUserID", req.ToUserID))

	s.publishEvent(ctx, &model.RelationshipEvent{
		Type:          model.EventTypeRequestSent,
		RequestID:     request.ID,
		FromUserID:    request.FromUserID,
		FromUserName:  request.FromUserName,
		FromUserPhoto: request.FromUserPhoto,
		ToUserID:      request.ToUserID,
		ToUserName:    request.ToUserName,
		Message:       request.Message,
		Timestamp:     time.Now().Unix(),
	})

	s.refreshPending(ctx, request.ToUserID)
	s.refreshSent(ctx, request.FromUserID)

	return request, nil
}

// AcceptRequest 接受连接申请，建立双向连接
// 只有接收方能接受；接受时清理该配对反方向的待处理申请。
func (s *Service) AcceptRequest(ctx context.Context, requestID, actorID int64) error {
	request, err := s.dao.GetRequest(ctx, requestID)
	if err != nil {
		if err == dao.ErrNotFound {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to get request: %v", err)
	}
	if request.ToUserID != actorID {
		return ErrNotRequestRecipient
	}

	release, acquired := s.locker.AcquirePairLock(ctx, request.FromUserID, request.ToUserID)
	if !acquired {
		return ErrDuplicateRelationship
	}
	defer release()

	now := time.Now()
	forward := &model.Connection{
		UserID:      request.FromUserID,
		PeerID:      request.ToUserID,
		PeerName:    request.ToUserName,
		ConnectedAt: now,
	}
	backward := &model.Connection{
		UserID:      request.ToUserID,
		PeerID:      request.FromUserID,
		PeerName:    request.FromUserName,
		ConnectedAt: now,
	}

	if err := s.dao.CreateConnection(ctx, forward); err != nil && err != dao.ErrDuplicateKey {
		return fmt.Errorf("failed to create connection: %v", err)
	}
	if err := s.dao.CreateConnection(ctx, backward); err != nil && err != dao.ErrDuplicateKey {
		return fmt.Errorf("failed to create connection: %v", err)
	}

	// 清理两个方向的待处理申请，包括对方此前发来的交叉申请
	if err := s.dao.DeletePendingBetween(ctx, request.FromUserID, request.ToUserID); err != nil {
		s.logger.Error(ctx, "Failed to clean up pending requests",
			logger.F("requestID", requestID),
			logger.F("error", err.Error()))
	}

	s.logger.Info(ctx, "Connection request accepted",
		logger.F("requestID", requestID),
		logger.F("fromUserID", request.FromUserID),
		logger.F("toUserID", request.ToUserID))

	s.publishEvent(ctx, &model.RelationshipEvent{
		Type:         model.EventTypeRequestAccepted,
		RequestID:    requestID,
		FromUserID:   request.FromUserID,
		FromUserName: request.FromUserName,
		ToUserID:     request.ToUserID,
		ToUserName:   request.ToUserName,
		Timestamp:    now.Unix(),
	})

	s.refreshPending(ctx, request.ToUserID)
	s.refreshSent(ctx, request.FromUserID)
	s.refreshPending(ctx, request.FromUserID)
	s.refreshSent(ctx, request.ToUserID)
	s.refreshConnections(ctx, request.FromUserID)
	s.refreshConnections(ctx, request.ToUserID)

	return nil
}

// RejectRequest 拒绝连接申请
// 申请被物理删除，发送方之后可以重新发起。
func (s *Service) RejectRequest(ctx context.Context, requestID, actorID int64) error {
	request, err := s.dao.GetRequest(ctx, requestID)
	if err != nil {
		if err == dao.ErrNotFound {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to get request: %v", err)
	}
	if request.ToUserID != actorID {
		return ErrNotRequestRecipient
	}

	if err := s.dao.DeleteRequest(ctx, requestID); err != nil {
		return fmt.Errorf("failed to delete request: %v", err)
	}

	s.logger.Info(ctx, "Connection request rejected",
		logger.F("requestID", requestID),
		logger.F("actorID", actorID))

	s.refreshPending(ctx, request.ToUserID)
	s.refreshSent(ctx, request.FromUserID)

	return nil
}

// CancelRequest 撤回连接申请
// 只有发送方能撤回自己发出的申请。
func (s *Service) CancelRequest(ctx context.Context, requestID, actorID int64) error {
	request, err := s.dao.GetRequest(ctx, requestID)
	if err != nil {
		if err == dao.ErrNotFound {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to get request: %v", err)
	}
	if request.FromUserID != actorID {
		return ErrNotRequestSender
	}

	if err := s.dao.DeleteRequest(ctx, requestID); err != nil {
		return fmt.Errorf("failed to delete request: %v", err)
	}

	s.logger.Info(ctx, "Connection request cancelled",
		logger.F("requestID", requestID),
		logger.F("actorID", actorID))

	s.refreshPending(ctx, request.ToUserID)
	s.refreshSent(ctx, request.FromUserID)

	return nil
}

// RemoveConnection 解除连接，双向边同时删除
func (s *Service) RemoveConnection(ctx context.Context, userID, peerID int64) error {
	release, acquired := s.locker.AcquirePairLock(ctx, userID, peerID)
	if !acquired {
		return ErrDuplicateRelationship
	}
	defer release()

	if err := s.dao.DeleteConnection(ctx, userID, peerID); err != nil {
		return fmt.Errorf("failed to delete connection: %v", err)
	}
	if err := s.dao.DeleteConnection(ctx, peerID, userID); err != nil {
		return fmt.Errorf("failed to delete connection: %v", err)
	}

	s.logger.Info(ctx, "Connection removed",
		logger.F("userID", userID),
		logger.F("peerID", peerID))

	s.publishEvent(ctx, &model.RelationshipEvent{
		Type:       model.EventTypeConnectionRemoved,
		FromUserID: userID,
		ToUserID:   peerID,
		Timestamp:  time.Now().Unix(),
	})

	s.refreshConnections(ctx, userID)
	s.refreshConnections(ctx, peerID)

	return nil
}

// GetStatus 查询两个用户之间的关系状态
// 连接边优先于残留的待处理申请。
func (s *Service) GetStatus(ctx context.Context, userID, peerID int64) (string, error) {
	if userID == peerID {
		return model.StatusNone, nil
	}

	connected, err := s.dao.HasConnection(ctx, userID, peerID)
	if err != nil {
		return "", fmt.Errorf("failed to check connection: %v", err)
	}
	if connected {
		return model.StatusConnected, nil
	}

	if _, err := s.dao.FindPendingBetween(ctx, userID, peerID); err == nil {
		return model.StatusPending, nil
	} else if err != dao.ErrNotFound {
		return "", fmt.Errorf("failed to check pending request: %v", err)
	}

	return model.StatusNone, nil
}

// ListPending 获取发给某用户的待处理申请
func (s *Service) ListPending(ctx context.Context, userID int64) ([]*model.ConnectionRequest, error) {
	return s.dao.ListRequestsTo(ctx, userID)
}

// ListSent 获取某用户发出的待处理申请
func (s *Service) ListSent(ctx context.Context, userID int64) ([]*model.ConnectionRequest, error) {
	return s.dao.ListRequestsFrom(ctx, userID)
}

// ListConnections 获取某用户的连接列表
func (s *Service) ListConnections(ctx context.Context, userID int64) ([]*model.Connection, error) {
	return s.dao.ListConnections(ctx, userID)
}

// publishEvent 发布事件，失败只记日志不影响主流程
func (s *Service) publishEvent(ctx context.Context, event *model.RelationshipEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRelationshipEvent(ctx, event); err != nil {
		s.logger.Error(ctx, "Failed to publish relationship event",
			logger.F("type", event.Type),
			logger.F("error", err.Error()))
	}
}
