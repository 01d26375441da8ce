package queue

import (
	"encoding/json"

	"github.com/freightdesk-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskStatusEventDispatch 状态事件分发任务
	TaskStatusEventDispatch = constants.TaskStatusEventDispatch
)

// StatusEventPayload 状态事件任务载荷
type StatusEventPayload struct {
	EntityKind string `json:"entity_kind"`
	EntityID   uint   `json:"entity_id"`
	NewStatus  string `json:"new_status"`
	ActorID    uint   `json:"actor_id"`
}

// NewStatusEventTask 创建状态事件分发任务
func NewStatusEventTask(payload StatusEventPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatusEventDispatch, body), nil
}
