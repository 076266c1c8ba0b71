package game

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// roomIDLength 是对外暴露的短房间号长度（UUID 前缀）。
const roomIDLength = 6

// Registry 是进程内房间号到 Room 的唯一映射，持有创建、查找和
// 销毁的全部入口。它在进程启动时构造一次并注入网关，不使用任何
// 包级全局状态。清理调度器归 Registry 所有：房间失去存续条件时
// 延迟销毁，恢复存续时取消。
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	janitor *Janitor
}

// NewRegistry 创建 Registry。cleanupDelay 是房间变为不可存续后到
// 实际销毁之间的延迟；onExpire 在延迟到期时被回调（由网关串行处理
// 实际的销毁和 roomClosed 广播）。
func NewRegistry(cleanupDelay time.Duration, onExpire func(roomID string)) *Registry {
	r := &Registry{
		rooms: make(map[string]*Room),
	}
	r.janitor = NewJanitor(cleanupDelay, onExpire)
	return r
}

// CreateRoom 生成一个短的唯一房间号并注册新房间，创建者成为房主
// 和唯一成员。房间号冲突通过重新生成解决。
func (reg *Registry) CreateRoom(ownerConnID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var id string
	for {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")[:roomIDLength]
		if _, exists := reg.rooms[id]; !exists {
			break
		}
	}
	room := newRoom(id, ownerConnID)
	reg.rooms[id] = room

	logrus.WithFields(logrus.Fields{
		"room_id": id,
		"owner":   ownerConnID,
	}).Info("Room created")
	return room
}

// JoinRoom 把连接追加到房间成员列表。房间不存在返回 ErrRoomNotFound。
// 按基础设计不拒绝重复加入。若房间因此恢复到可存续规模（>=2 名成员），
// 取消挂起的清理定时器。
func (reg *Registry) JoinRoom(roomID, connID string) (*Room, error) {
	room, ok := reg.GetRoom(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	room.addMember(connID)
	if len(room.Members()) >= 2 {
		reg.janitor.Cancel(roomID)
	}
	logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"conn_id": connID,
	}).Info("Connection joined room")
	return room, nil
}

// GetRoom 是纯查找，供所有游戏操作使用。
func (reg *Registry) GetRoom(roomID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	return room, ok
}

// RemoveRoom 无条件删除房间条目，幂等。同时丢弃其挂起的清理定时器。
func (reg *Registry) RemoveRoom(roomID string) {
	reg.janitor.Cancel(roomID)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rooms[roomID]; ok {
		delete(reg.rooms, roomID)
		logrus.WithField("room_id", roomID).Info("Room removed from registry")
	}
}

// ScheduleCleanup 在房间胜负已分或成员不足时调度延迟销毁。
func (reg *Registry) ScheduleCleanup(roomID string) {
	reg.janitor.Schedule(roomID)
}

// CancelCleanup 在房间恢复存续条件时取消挂起的销毁。
func (reg *Registry) CancelCleanup(roomID string) {
	reg.janitor.Cancel(roomID)
}

// CleanupPending 报告房间是否有挂起的销毁定时器。
func (reg *Registry) CleanupPending(roomID string) bool {
	return reg.janitor.Pending(roomID)
}

// SweepResult 描述防御性清扫中一个受影响的房间。
type SweepResult struct {
	RoomID string
	Leave  LeaveResult
}

// SweepConnection 把连接从仍把它列为成员的每个房间移除。
// 传输层断开时网关无法假定客户端先发送了 leaveRoom，所以对全部
// 房间做防御性清扫。返回每个受影响房间的离开结果供网关广播。
func (reg *Registry) SweepConnection(connID string) []SweepResult {
	reg.mu.RLock()
	affected := make([]*Room, 0)
	for _, room := range reg.rooms {
		if room.HasMember(connID) {
			affected = append(affected, room)
		}
	}
	reg.mu.RUnlock()

	results := make([]SweepResult, 0, len(affected))
	for _, room := range affected {
		res := room.RemoveMember(connID)
		if res.WasMember {
			results = append(results, SweepResult{RoomID: room.ID(), Leave: res})
		}
	}
	return results
}

// IdleRooms 返回最近活动时间早于给定时刻的房间号列表，
// 供后台空闲回收任务使用。
func (reg *Registry) IdleRooms(olderThan time.Time) []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	ids := make([]string, 0)
	for id, room := range reg.rooms {
		if room.LastActive().Before(olderThan) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len 返回当前注册的房间数。
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Stop 释放清理调度器持有的全部定时器。
func (reg *Registry) Stop() {
	reg.janitor.Stop()
}
