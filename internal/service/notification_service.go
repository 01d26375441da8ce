package service

import (
	"github.com/freightdesk-next/internal/queue"
)

// NotificationService 状态事件通知服务
// 事件经异步队列分发给下游消费者；队列未启用时直接丢弃。
type NotificationService struct {
	queueClient *queue.Client
}

// NewNotificationService 创建状态事件通知服务
func NewNotificationService(queueClient *queue.Client) *NotificationService {
	return &NotificationService{queueClient: queueClient}
}

// Dispatch 分发单个状态事件
func (s *NotificationService) Dispatch(event StatusEvent) error {
	if s == nil || !s.queueClient.Enabled() {
		return nil
	}
	return s.queueClient.EnqueueStatusEvent(queue.StatusEventPayload{
		EntityKind: event.EntityKind,
		EntityID:   event.EntityID,
		NewStatus:  event.NewStatus,
		ActorID:    event.ActorID,
	})
}
