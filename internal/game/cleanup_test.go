package game_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastavikadi/BeatBRAWL/internal/game"
)

// expireRecorder 收集到期回调，便于断言。
type expireRecorder struct {
	mu      sync.Mutex
	expired []string
	fired   chan string
}

func newExpireRecorder() *expireRecorder {
	return &expireRecorder{fired: make(chan string, 16)}
}

func (r *expireRecorder) onExpire(roomID string) {
	r.mu.Lock()
	r.expired = append(r.expired, roomID)
	r.mu.Unlock()
	r.fired <- roomID
}

func (r *expireRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.expired)
}

func TestJanitor_ScheduleFires(t *testing.T) {
	rec := newExpireRecorder()
	j := game.NewJanitor(20*time.Millisecond, rec.onExpire)
	defer j.Stop()

	j.Schedule("room-1")
	assert.True(t, j.Pending("room-1"))

	select {
	case roomID := <-rec.fired:
		assert.Equal(t, "room-1", roomID)
	case <-time.After(time.Second):
		t.Fatal("cleanup timer did not fire")
	}
	assert.False(t, j.Pending("room-1"))
}

func TestJanitor_CancelPreventsExpiry(t *testing.T) {
	rec := newExpireRecorder()
	j := game.NewJanitor(30*time.Millisecond, rec.onExpire)
	defer j.Stop()

	j.Schedule("room-1")
	j.Cancel("room-1")
	assert.False(t, j.Pending("room-1"))

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, rec.count(), "cancelled timer must not fire")
}

func TestJanitor_Cancel_Idempotent(t *testing.T) {
	rec := newExpireRecorder()
	j := game.NewJanitor(time.Minute, rec.onExpire)
	defer j.Stop()

	// 未调度过的房间取消不报错
	j.Cancel("never-scheduled")
	j.Schedule("room-1")
	j.Cancel("room-1")
	j.Cancel("room-1")
	assert.False(t, j.Pending("room-1"))
}

func TestJanitor_ScheduleResetsExistingTimer(t *testing.T) {
	rec := newExpireRecorder()
	j := game.NewJanitor(50*time.Millisecond, rec.onExpire)
	defer j.Stop()

	j.Schedule("room-1")
	time.Sleep(30 * time.Millisecond)
	// 重新调度重置计时，旧定时器不会叠加触发
	j.Schedule("room-1")
	time.Sleep(30 * time.Millisecond)
	require.Zero(t, rec.count())

	select {
	case <-rec.fired:
	case <-time.After(time.Second):
		t.Fatal("rescheduled cleanup timer did not fire")
	}
	assert.Equal(t, 1, rec.count())
}

func TestJanitor_StopDropsAllTimers(t *testing.T) {
	rec := newExpireRecorder()
	j := game.NewJanitor(30*time.Millisecond, rec.onExpire)

	j.Schedule("room-1")
	j.Schedule("room-2")
	j.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, rec.count())
	assert.False(t, j.Pending("room-1"))
	assert.False(t, j.Pending("room-2"))
}
