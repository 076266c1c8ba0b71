package game

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Janitor 管理按房间号索引的可取消延迟销毁定时器。
// 房间在胜负已分或成员不足后经过固定延迟被销毁；在此之前恢复
// 存续条件的房间必须能取消定时器（这是对原始实现的修正，原始
// 实现的 setTimeout 不可取消，房间即使恢复也会被销毁）。
type Janitor struct {
	delay    time.Duration
	onExpire func(roomID string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewJanitor 创建 Janitor。onExpire 在定时器 goroutine 中被调用，
// 调用方负责把实际销毁动作排回自己的串行化队列。
func NewJanitor(delay time.Duration, onExpire func(roomID string)) *Janitor {
	return &Janitor{
		delay:    delay,
		onExpire: onExpire,
		timers:   make(map[string]*time.Timer),
	}
}

// Schedule 为房间调度延迟销毁。已有定时器时重置，不会叠加。
func (j *Janitor) Schedule(roomID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if t, ok := j.timers[roomID]; ok {
		t.Stop()
	}
	j.timers[roomID] = time.AfterFunc(j.delay, func() {
		j.mu.Lock()
		delete(j.timers, roomID)
		j.mu.Unlock()
		logrus.WithField("room_id", roomID).Info("Cleanup timer fired, expiring room")
		j.onExpire(roomID)
	})
	logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"delay":   j.delay.String(),
	}).Info("Room cleanup scheduled")
}

// Cancel 取消房间挂起的销毁定时器，幂等。
func (j *Janitor) Cancel(roomID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if t, ok := j.timers[roomID]; ok {
		t.Stop()
		delete(j.timers, roomID)
		logrus.WithField("room_id", roomID).Info("Room cleanup cancelled")
	}
}

// Pending 报告房间是否有挂起的销毁定时器。
func (j *Janitor) Pending(roomID string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.timers[roomID]
	return ok
}

// Stop 停止并丢弃所有定时器，用于进程关闭。
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for id, t := range j.timers {
		t.Stop()
		delete(j.timers, id)
	}
}
