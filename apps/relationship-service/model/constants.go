package model

// 关系状态（按需计算，不落库）
const (
	StatusNone      = "none"
	StatusPending   = "pending"
	StatusConnected = "connected"
)

// 申请状态
const (
	RequestStatusPending = "pending"
)

// Mongo集合
const (
	CollectionRequests    = "connection_requests"
	CollectionConnections = "connections"
)

// Kafka事件
const (
	TopicRelationshipEvents = "relationship.events"

	EventTypeRequestSent       = "request.sent"
	EventTypeRequestAccepted   = "request.accepted"
	EventTypeConnectionRemoved = "connection.removed"
)

// 实时流类型
const (
	StreamPending     = "pending"
	StreamSent        = "sent"
	StreamConnections = "connections"
)

// Redis键前缀
const (
	LockKeyPair = "relationship:pair" // 配对互斥锁
)

// 列表查询上限
const (
	MaxListLimit = 200
)
