package game_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastavikadi/BeatBRAWL/internal/game"
)

func newTestRegistry(t *testing.T) *game.Registry {
	t.Helper()
	reg := game.NewRegistry(time.Minute, func(string) {})
	t.Cleanup(reg.Stop)
	return reg
}

func TestRegistry_CreateRoom(t *testing.T) {
	reg := newTestRegistry(t)

	room := reg.CreateRoom("owner-1")
	require.NotNil(t, room)

	// 房间号是 6 位短标识，创建者是房主和唯一成员
	assert.Len(t, room.ID(), 6)
	assert.Equal(t, "owner-1", room.Owner())
	assert.Equal(t, []string{"owner-1"}, room.Members())
	assert.False(t, room.Started())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_CreateRoom_UniqueIDs(t *testing.T) {
	reg := newTestRegistry(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		room := reg.CreateRoom("owner")
		assert.False(t, seen[room.ID()], "room id %s issued twice", room.ID())
		seen[room.ID()] = true
	}
}

func TestRegistry_JoinRoom(t *testing.T) {
	reg := newTestRegistry(t)
	room := reg.CreateRoom("owner-1")

	joined, err := reg.JoinRoom(room.ID(), "player-2")
	require.NoError(t, err)
	assert.Same(t, room, joined)
	assert.Equal(t, []string{"owner-1", "player-2"}, room.Members())
}

func TestRegistry_JoinRoom_NotFound(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.JoinRoom("nonexistent", "player-1")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestRegistry_JoinRoom_DuplicateTolerated(t *testing.T) {
	reg := newTestRegistry(t)
	room := reg.CreateRoom("owner-1")

	// 重复加入不被拒绝，成员列表出现两次
	_, err := reg.JoinRoom(room.ID(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"owner-1", "owner-1"}, room.Members())
}

func TestRegistry_JoinRoom_CancelsPendingCleanup(t *testing.T) {
	reg := newTestRegistry(t)
	room := reg.CreateRoom("owner-1")

	reg.ScheduleCleanup(room.ID())
	require.True(t, reg.CleanupPending(room.ID()))

	// 第二名成员到达，房间恢复存续，销毁定时器被取消
	_, err := reg.JoinRoom(room.ID(), "player-2")
	require.NoError(t, err)
	assert.False(t, reg.CleanupPending(room.ID()))
}

func TestRegistry_RemoveRoom_Idempotent(t *testing.T) {
	reg := newTestRegistry(t)
	room := reg.CreateRoom("owner-1")
	reg.ScheduleCleanup(room.ID())

	reg.RemoveRoom(room.ID())
	assert.Equal(t, 0, reg.Len())
	assert.False(t, reg.CleanupPending(room.ID()))

	// 再删一次不报错
	reg.RemoveRoom(room.ID())
	assert.Equal(t, 0, reg.Len())

	_, ok := reg.GetRoom(room.ID())
	assert.False(t, ok)
}

func TestRegistry_SweepConnection(t *testing.T) {
	reg := newTestRegistry(t)
	roomA := reg.CreateRoom("player-1")
	roomB := reg.CreateRoom("other")
	_, err := reg.JoinRoom(roomB.ID(), "player-1")
	require.NoError(t, err)

	results := reg.SweepConnection("player-1")
	require.Len(t, results, 2)

	assert.False(t, roomA.HasMember("player-1"))
	assert.False(t, roomB.HasMember("player-1"))
	for _, res := range results {
		assert.True(t, res.Leave.WasMember)
	}
}

func TestRegistry_SweepConnection_NoMembership(t *testing.T) {
	reg := newTestRegistry(t)
	reg.CreateRoom("owner-1")

	results := reg.SweepConnection("stranger")
	assert.Empty(t, results)
}

func TestRegistry_IdleRooms(t *testing.T) {
	reg := newTestRegistry(t)
	stale := reg.CreateRoom("owner-1")
	time.Sleep(20 * time.Millisecond)
	cutoff := time.Now()
	fresh := reg.CreateRoom("owner-2")

	idle := reg.IdleRooms(cutoff)
	assert.Contains(t, idle, stale.ID())
	assert.NotContains(t, idle, fresh.ID())
}
