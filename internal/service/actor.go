package service

// Actor 当前操作人上下文
// 由调用方随每次写操作显式传入，审计与通知不读取任何环境态。
type Actor struct {
	ID        uint
	Name      string
	Role      string
	RequestID string
}

// StatusEvent 状态流转事件
// 状态机在事务提交后返回事件列表，由调用方交给通知分发处理。
type StatusEvent struct {
	EntityKind string `json:"entity_kind"`
	EntityID   uint   `json:"entity_id"`
	NewStatus  string `json:"new_status"`
	ActorID    uint   `json:"actor_id"`
}
