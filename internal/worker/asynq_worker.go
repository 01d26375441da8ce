package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freightdesk-next/internal/cache"
	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/logger"
	"github.com/freightdesk-next/internal/provider"
	"github.com/freightdesk-next/internal/queue"

	"github.com/hibiken/asynq"
)

const statusCacheTTL = 24 * time.Hour

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskStatusEventDispatch, c.handleStatusEvent)
}

// handleStatusEvent 消费状态事件：校验实体仍存在后落地最新状态快照。
// 事件携带的状态可能已经滞后，以数据库当前值为准。
func (c *Consumer) handleStatusEvent(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_status_event_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StatusEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_status_event_unmarshal_failed", "error", err)
		return err
	}
	if payload.EntityID == 0 {
		logger.Debugw("worker_status_event_skip_invalid_payload", "entity_id", payload.EntityID)
		return nil
	}

	currentStatus := ""
	switch payload.EntityKind {
	case constants.AuditEntityConsignment:
		consignment, err := c.ConsignmentRepo.GetByID(payload.EntityID)
		if err != nil {
			logger.Warnw("worker_status_event_fetch_consignment_failed", "consignment_id", payload.EntityID, "error", err)
			return err
		}
		if consignment == nil {
			logger.Debugw("worker_status_event_skip_consignment_not_found", "consignment_id", payload.EntityID)
			return nil
		}
		currentStatus = consignment.Status
	case constants.AuditEntityConsole:
		console, err := c.ConsoleRepo.GetByID(payload.EntityID)
		if err != nil {
			logger.Warnw("worker_status_event_fetch_console_failed", "console_id", payload.EntityID, "error", err)
			return err
		}
		if console == nil {
			logger.Debugw("worker_status_event_skip_console_not_found", "console_id", payload.EntityID)
			return nil
		}
		currentStatus = console.Status
	default:
		logger.Debugw("worker_status_event_skip_unknown_kind", "entity_kind", payload.EntityKind)
		return nil
	}

	key := fmt.Sprintf("status:%s:%d", payload.EntityKind, payload.EntityID)
	if err := cache.SetJSON(ctx, key, map[string]interface{}{
		"status":     currentStatus,
		"event":      payload.NewStatus,
		"actor_id":   payload.ActorID,
		"updated_at": time.Now().Unix(),
	}, statusCacheTTL); err != nil {
		logger.Warnw("worker_status_event_cache_failed",
			"entity_kind", payload.EntityKind,
			"entity_id", payload.EntityID,
			"error", err,
		)
		return err
	}

	logger.Infow("worker_status_event_dispatched",
		"entity_kind", payload.EntityKind,
		"entity_id", payload.EntityID,
		"new_status", payload.NewStatus,
		"current_status", currentStatus,
		"actor_id", payload.ActorID,
	)
	return nil
}
