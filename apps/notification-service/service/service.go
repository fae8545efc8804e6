package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bhakti-social/apps/notification-service/dao"
	"bhakti-social/apps/notification-service/model"
	"bhakti-social/pkg/logger"
	"bhakti-social/pkg/snowflake"
	"bhakti-social/pkg/subscription"
)

// 业务错误
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrNotAdmin             = errors.New("admin privilege required")
)

// Service 通知服务
type Service struct {
	notificationDAO dao.NotificationDAO
	userDAO         dao.UserDAO
	cache           UnreadCache
	hub             *subscription.Hub
	idGen           *snowflake.Snowflake
	retention       time.Duration
	logger          logger.Logger

	// 测试可注入时钟
	now func() time.Time
}

// NewService 创建通知服务实例
func NewService(notificationDAO dao.NotificationDAO, userDAO dao.UserDAO, cache UnreadCache, hub *subscription.Hub, retentionHours int, log logger.Logger) *Service {
	idGen, err := snowflake.NewSnowflake(2)
	if err != nil {
		panic(fmt.Sprintf("Failed to create snowflake generator: %v", err))
	}

	if retentionHours <= 0 {
		retentionHours = model.DefaultRetentionHours
	}

	return &Service{
		notificationDAO: notificationDAO,
		userDAO:         userDAO,
		cache:           cache,
		hub:             hub,
		idGen:           idGen,
		retention:       time.Duration(retentionHours) * time.Hour,
		logger:          log,
		now:             time.Now,
	}
}

// cutoff 通知可见窗口的下界
func (s *Service) cutoff() time.Time {
	return s.now().Add(-s.retention)
}

// Notify 给某用户写入一条通知
// 写入前先清理该用户的过期通知，保留窗口滚动前移。
func (s *Service) Notify(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if err := s.notificationDAO.DeleteOlderThan(ctx, n.UserID, s.cutoff()); err != nil {
		s.logger.Warn(ctx, "Failed to clean up expired notifications",
			logger.F("userID", n.UserID),
			logger.F("error", err.Error()))
	}

	n.ID = s.idGen.Generate()
	n.Read = false
	n.CreatedAt = s.now()

	if err := s.notificationDAO.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %v", err)
	}

	s.logger.Info(ctx, "Notification created",
		logger.F("notificationID", n.ID),
		logger.F("userID", n.UserID),
		logger.F("type", n.Type))

	s.cache.InvalidateUnread(ctx, n.UserID)
	s.refreshStream(ctx, n.UserID)

	return n, nil
}

// ListActive 获取某用户保留窗口内的通知，新的在前
func (s *Service) ListActive(ctx context.Context, userID int64, unreadOnly bool) ([]*model.Notification, error) {
	return s.notificationDAO.ListByUser(ctx, userID, s.cutoff(), unreadOnly)
}

// GetNotification 获取某用户的单条通知
// 超出保留窗口的通知视同不存在，即使物理清理尚未执行。
func (s *Service) GetNotification(ctx context.Context, userID, notificationID int64) (*model.Notification, error) {
	n, err := s.notificationDAO.GetNotification(ctx, userID, notificationID)
	if err != nil {
		if err == dao.ErrNotFound {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if !n.CreatedAt.After(s.cutoff()) {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

// MarkRead 标记单条通知已读，重复标记是空操作
func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	err := s.notificationDAO.MarkRead(ctx, userID, notificationID)
	if err != nil {
		if err == dao.ErrNotFound {
			return ErrNotificationNotFound
		}
		return err
	}

	s.cache.InvalidateUnread(ctx, userID)
	s.refreshStream(ctx, userID)
	return nil
}

// MarkAllRead 标记某用户全部通知已读
func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	if err := s.notificationDAO.MarkAllRead(ctx, userID); err != nil {
		return err
	}

	s.cache.InvalidateUnread(ctx, userID)
	s.refreshStream(ctx, userID)
	return nil
}

// UnreadCount 查询某用户保留窗口内的未读数，带缓存
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if count, ok := s.cache.GetUnread(ctx, userID); ok {
		return count, nil
	}

	count, err := s.notificationDAO.CountUnread(ctx, userID, s.cutoff())
	if err != nil {
		return 0, err
	}

	s.cache.SetUnread(ctx, userID, count)
	return count, nil
}

// requireAdmin 校验操作者是管理员
func (s *Service) requireAdmin(ctx context.Context, actorID int64) error {
	actor, err := s.userDAO.GetUserByID(ctx, actorID)
	if err != nil {
		if err == dao.ErrNotFound {
			return ErrNotAdmin
		}
		return err
	}
	if actor.Role != model.RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

// Broadcast 向全部注册用户广播通知，返回投递数
// 仅管理员可调用；每个用户得到独立的通知副本，已读状态互不影响。
func (s *Service) Broadcast(ctx context.Context, actorID int64, title, message string) (int, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return 0, err
	}

	userIDs, err := s.userDAO.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users for broadcast: %v", err)
	}

	delivered := 0
	for _, userID := range userIDs {
		_, err := s.Notify(ctx, &model.Notification{
			UserID:  userID,
			Type:    model.TypeBroadcast,
			Title:   title,
			Message: message,
		})
		if err != nil {
			s.logger.Error(ctx, "Broadcast delivery failed",
				logger.F("userID", userID),
				logger.F("error", err.Error()))
			continue
		}
		delivered++
	}

	s.logger.Info(ctx, "Broadcast completed",
		logger.F("total", len(userIDs)),
		logger.F("delivered", delivered))
	return delivered, nil
}

// NotifyContentDecision 通知用户其投稿内容的审核结果，仅管理员可调用
func (s *Service) NotifyContentDecision(ctx context.Context, actorID int64, req *model.ContentDecisionRequest) (*model.Notification, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	notificationType := model.TypeContentApproved
	title := "内容已通过审核"
	message := fmt.Sprintf("您分享的「%s」已发布", req.ContentTitle)
	if !req.Approved {
		notificationType = model.TypeContentRejected
		title = "内容未通过审核"
		message = fmt.Sprintf("您分享的「%s」未能发布", req.ContentTitle)
	}

	return s.Notify(ctx, &model.Notification{
		UserID:       req.UserID,
		Type:         notificationType,
		Title:        title,
		Message:      message,
		AdminComment: req.AdminComment,
	})
}

// RegisterUser 注册用户
func (s *Service) RegisterUser(ctx context.Context, req *model.RegisterUserRequest) (*model.User, error) {
	user := &model.User{
		Username: req.Username,
		Nickname: req.Nickname,
		Photo:    req.Photo,
		Role:     model.RoleMember,
	}

	if err := s.userDAO.CreateUser(ctx, user); err != nil {
		if err == dao.ErrDuplicateUser {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	s.logger.Info(ctx, "User registered",
		logger.F("userID", user.ID),
		logger.F("username", user.Username))
	return user, nil
}

// GetUser 查询用户
func (s *Service) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userDAO.GetUserByID(ctx, userID)
	if err != nil {
		if err == dao.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByUsername 按用户名查询用户
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userDAO.GetUserByUsername(ctx, username)
	if err != nil {
		if err == dao.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SubscribeNotifications 订阅某用户的通知流
// 订阅建立时立即推一次当前快照，之后每次变更推送最新快照。
func (s *Service) SubscribeNotifications(ctx context.Context, userID int64, cb subscription.Callback) func() {
	unsubscribe := s.hub.Subscribe(subscription.Topic(model.StreamNotifications, userID), cb)
	s.refreshStream(ctx, userID)
	return unsubscribe
}

// refreshStream 重新查询并推送通知快照
func (s *Service) refreshStream(ctx context.Context, userID int64) {
	topic := subscription.Topic(model.StreamNotifications, userID)
	if s.hub.SubscriberCount(topic) == 0 {
		return
	}
	notifications, err := s.notificationDAO.ListByUser(ctx, userID, s.cutoff(), false)
	if err != nil {
		s.logger.Error(ctx, "Failed to refresh notification stream",
			logger.F("userID", userID),
			logger.F("error", err.Error()))
		return
	}
	s.hub.Publish(topic, notifications)
}
