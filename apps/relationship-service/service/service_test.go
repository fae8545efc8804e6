package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bhakti-social/apps/relationship-service/dao"
	"bhakti-social/apps/relationship-service/model"
	"bhakti-social/pkg/logger"
	"bhakti-social/pkg/subscription"
)

// newTestService 构造使用内存依赖的服务实例
func newTestService() (*Service, *dao.MemoryRelationshipDAO, *MockEventService) {
	memDAO := dao.NewMemoryRelationshipDAO()
	events := NewMockEventService()
	svc := NewService(memDAO, events, NewMockPairLocker(), subscription.NewHub(), logger.GetLogger())
	return svc, memDAO, events
}

func sendRequest(t *testing.T, svc *Service, from, to int64) *model.ConnectionRequest {
	t.Helper()
	req, err := svc.SendRequest(context.Background(), &model.SendRequestRequest{
		FromUserID:   from,
		FromUserName: "user-from",
		ToUserID:     to,
		ToUserName:   "user-to",
		Message:      "让我们一起修行",
	})
	require.NoError(t, err)
	return req
}

func TestSendRequest_Basic(t *testing.T) {
	svc, _, events := newTestService()
	ctx := context.Background()

	req := sendRequest(t, svc, 1001, 1002)
	assert.NotZero(t, req.ID)
	assert.Equal(t, model.RequestStatusPending, req.Status)

	status, err := svc.GetStatus(ctx, 1001, 1002)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, status)

	// 两个方向看到的状态一致
	status, err = svc.GetStatus(ctx, 1002, 1001)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, status)

	assert.Len(t, events.EventsOfType(model.EventTypeRequestSent), 1)
}

func TestSendRequest_Self(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.SendRequest(context.Background(), &model.SendRequestRequest{
		FromUserID:   1001,
		FromUserName: "user",
		ToUserID:     1001,
		ToUserName:   "user",
	})
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestSendRequest_DuplicateBothDirections(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sendRequest(t, svc, 1001, 1002)

	// 同方向重复
	_, err := svc.SendRequest(ctx, &model.SendRequestRequest{
		FromUserID: 1001, FromUserName: "a", ToUserID: 1002, ToUserName: "b",
	})
	assert.ErrorIs(t, err, ErrDuplicateRelationship)

	// 反方向也算重复
	_, err = svc.SendRequest(ctx, &model.SendRequestRequest{
		FromUserID: 1002, FromUserName: "b", ToUserID: 1001, ToUserName: "a",
	})
	assert.ErrorIs(t, err, ErrDuplicateRelationship)
}

func TestSendRequest_AlreadyConnected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := sendRequest(t, svc, 1001, 1002)
	require.NoError(t, svc.AcceptRequest(ctx, req.ID, 1002))

	_, err := svc.SendRequest(ctx, &model.SendRequestRequest{
		FromUserID: 1001, FromUserName: "a", ToUserID: 1002, ToUserName: "b",
	})
	assert.ErrorIs(t, err, ErrDuplicateRelationship)
}

func TestAcceptRequest_Symmetric(t *testing.T) {
	svc, _, events := newTestService()
	ctx := context.Background()

	req := sendRequest(t, svc, 1001, 1002)
	require.NoError(t, svc.AcceptRequest(ctx, req.ID, 1002))

	// 两个方向都已连接
	status, err := svc.GetStatus(ctx, 1001, 1002)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConnected, status)
	status, err = svc.GetStatus(ctx, 1002, 1001)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConnected, status)

	// 申请已被删除
	pending, err := svc.ListPending(ctx, 1002)
	require.NoError(t, err)
	assert.Empty(t, pending)
	sent, err := svc.ListSent(ctx, 1001)
	require.NoError(t, err)
	assert.Empty(t, sent)

	// 连接列表双方都有对方
	conns, err := svc.ListConnections(ctx, 1001)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, int64(1002), conns[0].PeerID)
	conns, err = svc.ListConnections(ctx, 1002)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, int64(1001), conns[0].PeerID)

	assert.Len(t, events.EventsOfType(model.EventTypeRequestAccepted), 1)
}

func TestAcceptRequest_OnlyRecipient(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := sendRequest(t, svc, 1001, 1002)

	// 发送方不能替对方接受
	err := svc.AcceptRequest(ctx, req.ID, 1001)
	assert.ErrorIs(t, err, ErrNotRequestRecipient)

	// 无关第三方也不能
	err = svc.AcceptRequest(ctx, req.ID, 1003)
	assert.ErrorIs(t, err, ErrNotRequestRecipient)
}

func TestAcceptRequest_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.AcceptRequest(context.Background(), 99999, 1002)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestAcceptRequest_CrossRequestScenario(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// A向B发申请，B没有直接接受而是尝试反向发申请
	req := sendRequest(t, svc, 1001, 1002)
	_, err := svc.SendRequest(ctx, &model.SendRequestRequest{
		FromUserID: 1002, FromUserName: "b", ToUserID: 1001, ToUserName: "a",
	})
	assert.ErrorIs(t, err, ErrDuplicateRelationship)

	// B接受A的原始申请，双方建立连接
	require.NoError(t, svc.AcceptRequest(ctx, req.ID, 1002))

	// 两个方向都不再有待处理申请
	pending, err := svc.ListPending(ctx, 1001)
	require.NoError(t, err)
	assert.Empty(t, pending)
	pending, err = svc.ListPending(ctx, 1002)
	require.NoError(t, err)
	assert.Empty(t, pending)

	status, err := svc.GetStatus(ctx, 1001, 1002)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConnected, status)
}

func TestDeletePendingBetween_BothDirections(t *testing.T) {
	memDAO := dao.NewMemoryRelationshipDAO()
	ctx := context.Background()

	require.NoError(t, memDAO.CreateRequest(ctx, &model.ConnectionRequest{
		ID:         1,
		PairKey:    model.PairKey(1001, 1002),
		FromUserID: 1002,
		ToUserID:   1001,
		Status:     model.RequestStatusPending,
		CreatedAt:  time.Now(),
	}))

	// 配对清理对两个方向同样生效
	require.NoError(t, memDAO.DeletePendingBetween(ctx, 1001, 1002))
	_, err := memDAO.FindPendingBetween(ctx, 1002, 1001)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestRejectRequest_AllowsResend(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := sendRequest(t, svc, 1001, 1002)
	require.NoError(t, svc.RejectRequest(ctx, req.ID, 1002))

	status, err := svc.GetStatus(ctx, 1001, 1002)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, status)

	// 被拒后可重新发起
	sendRequest(t, svc, 1001, 1002)
}

func TestRejectRequest_OnlyRecipient(t *testing.T) {
	svc, _, _ := newTestService()
	req := sendRequest(t, svc, 1001, 1002)
	err := svc.RejectRequest(context.Background(), req.ID, 1001)
	assert.ErrorIs(t, err, ErrNotRequestRecipient)
}

func TestCancelRequest_OnlySender(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := sendRequest(t, svc, 1001, 1002)

	err := svc.CancelRequest(ctx, req.ID, 1002)
	assert.ErrorIs(t, err, ErrNotRequestSender)

	require.NoError(t, svc.CancelRequest(ctx, req.ID, 1001))

	status, err := svc.GetStatus(ctx, 1001, 1002)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, status)
}

func TestRemoveConnection(t *testing.T) {
	svc, _, events := newTestService()
	ctx := context.Background()

	req := sendRequest(t, svc, 1001, 1002)
	require.NoError(t, svc.AcceptRequest(ctx, req.ID, 1002))
	require.NoError(t, svc.RemoveConnection(ctx, 1001, 1002))

	status, err := svc.GetStatus(ctx, 1001, 1002)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, status)
	status, err = svc.GetStatus(ctx, 1002, 1001)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, status)

	assert.Len(t, events.EventsOfType(model.EventTypeConnectionRemoved), 1)

	// 解除后可以重新发申请
	sendRequest(t, svc, 1002, 1001)
}

func TestGetStatus_EdgeWinsOverStalePending(t *testing.T) {
	svc, memDAO, _ := newTestService()
	ctx := context.Background()

	// 同时存在连接边和残留的待处理申请，连接边优先
	require.NoError(t, memDAO.CreateConnection(ctx, &model.Connection{
		UserID: 1001, PeerID: 1002, PeerName: "b", ConnectedAt: time.Now(),
	}))
	require.NoError(t, memDAO.CreateRequest(ctx, &model.ConnectionRequest{
		ID:         777,
		PairKey:    model.PairKey(1001, 1002),
		FromUserID: 1001,
		ToUserID:   1002,
		Status:     model.RequestStatusPending,
		CreatedAt:  time.Now(),
	}))

	status, err := svc.GetStatus(ctx, 1001, 1002)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConnected, status)
}

func TestGetStatus_SelfIsNone(t *testing.T) {
	svc, _, _ := newTestService()
	status, err := svc.GetStatus(context.Background(), 1001, 1001)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, status)
}

func TestSubscribePending_PushesSnapshots(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	var snapshots [][]*model.ConnectionRequest
	unsubscribe := svc.SubscribePending(ctx, 1002, func(payload interface{}) {
		snapshots = append(snapshots, payload.([]*model.ConnectionRequest))
	})
	defer unsubscribe()

	// 订阅即推初始快照
	require.Len(t, snapshots, 1)
	assert.Empty(t, snapshots[0])

	sendRequest(t, svc, 1001, 1002)
	require.Len(t, snapshots, 2)
	require.Len(t, snapshots[1], 1)
	assert.Equal(t, int64(1001), snapshots[1][0].FromUserID)

	// 接受后快照清空
	require.NoError(t, svc.AcceptRequest(ctx, snapshots[1][0].ID, 1002))
	require.GreaterOrEqual(t, len(snapshots), 3)
	assert.Empty(t, snapshots[len(snapshots)-1])
}

func TestSubscribeConnections_PushesOnAccept(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	var latest []*model.Connection
	unsubscribe := svc.SubscribeConnections(ctx, 1001, func(payload interface{}) {
		latest = payload.([]*model.Connection)
	})
	defer unsubscribe()
	assert.Empty(t, latest)

	req := sendRequest(t, svc, 1001, 1002)
	require.NoError(t, svc.AcceptRequest(ctx, req.ID, 1002))
	require.Len(t, latest, 1)
	assert.Equal(t, int64(1002), latest[0].PeerID)

	require.NoError(t, svc.RemoveConnection(ctx, 1001, 1002))
	assert.Empty(t, latest)
}

func TestUnsubscribe_StopsUpdates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	count := 0
	unsubscribe := svc.SubscribePending(ctx, 1002, func(payload interface{}) {
		count++
	})
	require.Equal(t, 1, count)

	unsubscribe()
	sendRequest(t, svc, 1001, 1002)
	assert.Equal(t, 1, count)
}
