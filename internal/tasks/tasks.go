// Package tasks 定义后台任务的类型常量和 payload。
package tasks

import (
	"encoding/json"
	"time"
)

const (
	// TypeRoomReapIdle 是周期性的空闲房间回收任务类型。
	TypeRoomReapIdle = "room:reap_idle"
)

// RoomReapIdlePayload 是空闲房间回收任务的数据结构。
type RoomReapIdlePayload struct {
	// IdleTTL 是房间无任何活动后被判定为空闲的时长。
	IdleTTL time.Duration `json:"idle_ttl"`
}

// NewRoomReapIdleTask 创建空闲房间回收任务的 payload。
func NewRoomReapIdleTask(idleTTL time.Duration) ([]byte, error) {
	payload := RoomReapIdlePayload{IdleTTL: idleTTL}
	return json.Marshal(payload)
}
