package model

// 通知类型
const (
	TypeConnectionRequest  = "connection_request"
	TypeConnectionAccepted = "connection_accepted"
	TypeBroadcast          = "broadcast"
	TypeContentApproved    = "content_approved"
	TypeContentRejected    = "content_rejected"
)

// 用户角色
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Mongo集合
const (
	CollectionNotifications = "notifications"
)

// Kafka消费
const (
	TopicRelationshipEvents = "relationship.events"
	ConsumerGroup           = "notification-service"

	EventTypeRequestSent     = "request.sent"
	EventTypeRequestAccepted = "request.accepted"
)

// Redis键前缀
const (
	CacheKeyUnread = "notification:unread" // 未读数缓存
)

// 实时流类型
const (
	StreamNotifications = "notifications"
)

// 通知保留时长（小时），超过后对用户不可见并被清理
const (
	DefaultRetentionHours = 24
)

// 列表查询上限
const (
	MaxListLimit = 200
)
