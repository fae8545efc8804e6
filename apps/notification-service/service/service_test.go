package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bhakti-social/apps/notification-service/dao"
	"bhakti-social/apps/notification-service/model"
	"bhakti-social/pkg/logger"
	"bhakti-social/pkg/subscription"
)

// newTestService 构造使用内存依赖的服务实例，时钟可控
func newTestService() (*Service, *dao.MemoryNotificationDAO, *dao.MemoryUserDAO, *time.Time) {
	notifDAO := dao.NewMemoryNotificationDAO()
	userDAO := dao.NewMemoryUserDAO()
	svc := NewService(notifDAO, userDAO, NewMockUnreadCache(), subscription.NewHub(), model.DefaultRetentionHours, logger.GetLogger())

	current := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }
	return svc, notifDAO, userDAO, &current
}

func createAdmin(t *testing.T, userDAO *dao.MemoryUserDAO) int64 {
	t.Helper()
	admin := &model.User{Username: "admin", Role: model.RoleAdmin}
	require.NoError(t, userDAO.CreateUser(context.Background(), admin))
	return admin.ID
}

func notify(t *testing.T, svc *Service, userID int64, title string) *model.Notification {
	t.Helper()
	n, err := svc.Notify(context.Background(), &model.Notification{
		UserID: userID,
		Type:   model.TypeBroadcast,
		Title:  title,
	})
	require.NoError(t, err)
	return n
}

func TestNotifyAndListActive(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	notify(t, svc, 2001, "first")
	notify(t, svc, 2001, "second")
	notify(t, svc, 2002, "other user")

	list, err := svc.ListActive(ctx, 2001, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Read)
}

func TestListActive_RetentionWindow(t *testing.T) {
	svc, _, _, current := newTestService()
	ctx := context.Background()

	base := *current
	n := notify(t, svc, 2001, "aging")

	// 23小时59分后仍可见
	*current = base.Add(23*time.Hour + 59*time.Minute)
	list, err := svc.ListActive(ctx, 2001, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, n.ID, list[0].ID)

	// 24小时01分后不可见
	*current = base.Add(24*time.Hour + time.Minute)
	list, err = svc.ListActive(ctx, 2001, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotify_CleansExpired(t *testing.T) {
	svc, notifDAO, _, current := newTestService()

	base := *current
	notify(t, svc, 2001, "old")
	assert.Equal(t, 1, notifDAO.Count())

	// 窗口滚过后，下一次写入触发清理
	*current = base.Add(25 * time.Hour)
	notify(t, svc, 2001, "new")
	assert.Equal(t, 1, notifDAO.Count())
}

func TestMarkRead_Idempotent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	n := notify(t, svc, 2001, "to read")

	require.NoError(t, svc.MarkRead(ctx, 2001, n.ID))
	// 重复标记是空操作
	require.NoError(t, svc.MarkRead(ctx, 2001, n.ID))

	list, err := svc.ListActive(ctx, 2001, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)

	// 未读过滤不再返回
	unread, err := svc.ListActive(ctx, 2001, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMarkRead_WrongUser(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	n := notify(t, svc, 2001, "mine")
	err := svc.MarkRead(ctx, 2002, n.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestMarkAllRead_Idempotent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	notify(t, svc, 2001, "a")
	notify(t, svc, 2001, "b")

	require.NoError(t, svc.MarkAllRead(ctx, 2001))
	count, err := svc.UnreadCount(ctx, 2001)
	require.NoError(t, err)
	assert.Zero(t, count)

	// 再次调用仍然成功
	require.NoError(t, svc.MarkAllRead(ctx, 2001))
}

func TestUnreadCount_Cache(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	cache := svc.cache.(*MockUnreadCache)

	notify(t, svc, 2001, "a")
	notify(t, svc, 2001, "b")

	count, err := svc.UnreadCount(ctx, 2001)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 第二次命中缓存
	count, err = svc.UnreadCount(ctx, 2001)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 1, cache.Hits)

	// 写入使缓存失效，重新计数
	notify(t, svc, 2001, "c")
	count, err = svc.UnreadCount(ctx, 2001)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestBroadcast_IndependentCopies(t *testing.T) {
	svc, _, userDAO, _ := newTestService()
	ctx := context.Background()

	adminID := createAdmin(t, userDAO)
	for i := 0; i < 99; i++ {
		require.NoError(t, userDAO.CreateUser(ctx, &model.User{
			Username: fmt.Sprintf("devotee-%d", i),
		}))
	}

	delivered, err := svc.Broadcast(ctx, adminID, "晚间共修提醒", "今晚八点线上共修")
	require.NoError(t, err)
	assert.Equal(t, 100, delivered)

	ids, err := userDAO.ListUserIDs(ctx)
	require.NoError(t, err)

	// 一个用户标记已读不影响其他用户
	first := ids[0]
	list, err := svc.ListActive(ctx, first, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, svc.MarkRead(ctx, first, list[0].ID))

	other, err := svc.ListActive(ctx, ids[1], true)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestBroadcast_RequiresAdmin(t *testing.T) {
	svc, notifDAO, userDAO, _ := newTestService()
	ctx := context.Background()

	member := &model.User{Username: "govinda", Role: model.RoleMember}
	require.NoError(t, userDAO.CreateUser(ctx, member))

	// 普通成员不能广播
	_, err := svc.Broadcast(ctx, member.ID, "标题", "内容")
	assert.ErrorIs(t, err, ErrNotAdmin)

	// 未注册的调用者同样被拒绝
	_, err = svc.Broadcast(ctx, 99999, "标题", "内容")
	assert.ErrorIs(t, err, ErrNotAdmin)

	assert.Zero(t, notifDAO.Count())
}

func TestNotifyContentDecision(t *testing.T) {
	svc, _, userDAO, _ := newTestService()
	ctx := context.Background()
	adminID := createAdmin(t, userDAO)

	approved, err := svc.NotifyContentDecision(ctx, adminID, &model.ContentDecisionRequest{
		UserID:       2001,
		ContentTitle: "清晨拜赞",
		Approved:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TypeContentApproved, approved.Type)

	rejected, err := svc.NotifyContentDecision(ctx, adminID, &model.ContentDecisionRequest{
		UserID:       2001,
		ContentTitle: "未经授权的录音",
		Approved:     false,
		AdminComment: "版权问题",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TypeContentRejected, rejected.Type)
	assert.Equal(t, "版权问题", rejected.AdminComment)
}

func TestNotifyContentDecision_RequiresAdmin(t *testing.T) {
	svc, notifDAO, userDAO, _ := newTestService()
	ctx := context.Background()

	member := &model.User{Username: "govinda", Role: model.RoleMember}
	require.NoError(t, userDAO.CreateUser(ctx, member))

	_, err := svc.NotifyContentDecision(ctx, member.ID, &model.ContentDecisionRequest{
		UserID:       2001,
		ContentTitle: "清晨拜赞",
		Approved:     true,
	})
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Zero(t, notifDAO.Count())
}

func TestGetNotification(t *testing.T) {
	svc, _, _, current := newTestService()
	ctx := context.Background()

	base := *current
	n := notify(t, svc, 2001, "single")

	got, err := svc.GetNotification(ctx, 2001, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "single", got.Title)

	// 其他用户查不到
	_, err = svc.GetNotification(ctx, 2002, n.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	// 超出保留窗口后视同不存在
	*current = base.Add(25 * time.Hour)
	_, err = svc.GetNotification(ctx, 2001, n.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestRegisterUser_DuplicateUsername(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, &model.RegisterUserRequest{Username: "radha"})
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, &model.RegisterUserRequest{Username: "radha"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestGetUserByUsername(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.RegisterUser(ctx, &model.RegisterUserRequest{Username: "radha", Nickname: "Radha"})
	require.NoError(t, err)

	user, err := svc.GetUserByUsername(ctx, "radha")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, model.RoleMember, user.Role)

	_, err = svc.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSubscribeNotifications_PushesSnapshots(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	var snapshots [][]*model.Notification
	unsubscribe := svc.SubscribeNotifications(ctx, 2001, func(payload interface{}) {
		snapshots = append(snapshots, payload.([]*model.Notification))
	})
	defer unsubscribe()

	require.Len(t, snapshots, 1)
	assert.Empty(t, snapshots[0])

	notify(t, svc, 2001, "hello")
	require.Len(t, snapshots, 2)
	require.Len(t, snapshots[1], 1)

	require.NoError(t, svc.MarkRead(ctx, 2001, snapshots[1][0].ID))
	require.GreaterOrEqual(t, len(snapshots), 3)
	assert.True(t, snapshots[len(snapshots)-1][0].Read)
}

func TestEventConsumer_RequestSent(t *testing.T) {
	svc, _, _, _ := newTestService()
	consumer := NewEventConsumer(svc, logger.GetLogger())

	event := &model.RelationshipEvent{
		Type:         model.EventTypeRequestSent,
		RequestID:    42,
		FromUserID:   2001,
		FromUserName: "govinda",
		ToUserID:     2002,
		Message:      "一起学习经典吧",
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, consumer.HandleMessage(&sarama.ConsumerMessage{
		Topic: model.TopicRelationshipEvents,
		Value: value,
	}))

	// 接收方收到申请通知
	list, err := svc.ListActive(context.Background(), 2002, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.TypeConnectionRequest, list[0].Type)
	assert.Equal(t, int64(2001), list[0].FromUserID)
	assert.Equal(t, int64(42), list[0].RequestID)
}

func TestEventConsumer_RequestAccepted(t *testing.T) {
	svc, _, _, _ := newTestService()
	consumer := NewEventConsumer(svc, logger.GetLogger())

	event := &model.RelationshipEvent{
		Type:       model.EventTypeRequestAccepted,
		RequestID:  42,
		FromUserID: 2001,
		ToUserID:   2002,
		ToUserName: "radha",
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, consumer.HandleMessage(&sarama.ConsumerMessage{
		Topic: model.TopicRelationshipEvents,
		Value: value,
	}))

	// 发送方收到接受通知
	list, err := svc.ListActive(context.Background(), 2001, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.TypeConnectionAccepted, list[0].Type)
}

func TestEventConsumer_MalformedAndUnknown(t *testing.T) {
	svc, notifDAO, _, _ := newTestService()
	consumer := NewEventConsumer(svc, logger.GetLogger())

	// 坏消息跳过不报错，否则会卡住整个分区
	require.NoError(t, consumer.HandleMessage(&sarama.ConsumerMessage{
		Value: []byte("not json"),
	}))

	// 未知事件类型不产生通知
	value, err := json.Marshal(&model.RelationshipEvent{Type: "connection.removed", FromUserID: 1, ToUserID: 2})
	require.NoError(t, err)
	require.NoError(t, consumer.HandleMessage(&sarama.ConsumerMessage{Value: value}))

	assert.Zero(t, notifDAO.Count())
}
