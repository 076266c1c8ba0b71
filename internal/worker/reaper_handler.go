package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/vastavikadi/BeatBRAWL/internal/game"
	"github.com/vastavikadi/BeatBRAWL/internal/tasks"
)

// RoomCloser 是回收处理器对网关的最小依赖：请求销毁一个房间。
// 实际的销毁和 roomClosed 广播由网关的派发循环串行执行。
type RoomCloser interface {
	ExpireRoom(roomID string)
}

// RoomReaperHandler 处理周期性的空闲房间回收任务。清理调度器只
// 覆盖显式失去存续条件的房间，这里兜底回收长时间无活动的房间。
type RoomReaperHandler struct {
	registry *game.Registry
	closer   RoomCloser
}

// NewRoomReaperHandler 创建 Handler 实例。
func NewRoomReaperHandler(registry *game.Registry, closer RoomCloser) *RoomReaperHandler {
	if registry == nil {
		panic("Registry cannot be nil for RoomReaperHandler")
	}
	if closer == nil {
		panic("RoomCloser cannot be nil for RoomReaperHandler")
	}
	return &RoomReaperHandler{registry: registry, closer: closer}
}

// ProcessTask 实现 asynq.Handler 接口。
func (h *RoomReaperHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())
	logCtx.Info("Processing idle room reap task...")

	var payload tasks.RoomReapIdlePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.IdleTTL <= 0 {
		return fmt.Errorf("invalid idle_ttl %v: %w", payload.IdleTTL, asynq.SkipRetry)
	}

	cutoff := time.Now().Add(-payload.IdleTTL)
	idle := h.registry.IdleRooms(cutoff)
	if len(idle) == 0 {
		logCtx.Debug("No idle rooms found")
		return nil
	}

	for _, roomID := range idle {
		logCtx.WithField("room_id", roomID).Info("Reaping idle room")
		h.closer.ExpireRoom(roomID)
	}
	logCtx.WithField("count", len(idle)).Info("Idle room reap task completed")
	return nil
}
