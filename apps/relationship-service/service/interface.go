package service

import (
	"context"

	"bhakti-social/apps/relationship-service/model"
)

// EventService 关系事件发布接口
type EventService interface {
	PublishRelationshipEvent(ctx context.Context, event *model.RelationshipEvent) error
}

// PairLocker 配对互斥锁接口
// 同一配对的写操作串行化，防止两端并发互发申请绕过状态检查。
type PairLocker interface {
	// AcquirePairLock 尝试获取配对锁，返回释放函数和是否获取成功
	AcquirePairLock(ctx context.Context, userA, userB int64) (release func(), acquired bool)
}
