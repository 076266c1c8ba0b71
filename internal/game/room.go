package game

import (
	"sync"
	"time"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// Room 表示一局隔离的游戏会话：有序成员列表、房主、开始标志
// 和它独占持有的 State。网关的派发循环是单 goroutine 的，但 HTTP
// 加入请求和后台清理与之并发，所以每个 Room 用自己的互斥锁串行化操作。
type Room struct {
	id    string
	owner string

	mu         sync.Mutex
	members    []string
	started    bool
	state      *State
	lastActive time.Time
}

func newRoom(id, ownerConnID string) *Room {
	return &Room{
		id:         id,
		owner:      ownerConnID,
		members:    []string{ownerConnID},
		state:      newState(),
		lastActive: time.Now(),
	}
}

func (r *Room) ID() string    { return r.id }
func (r *Room) Owner() string { return r.owner }

// Members 返回成员列表的副本，插入顺序即加入顺序。
func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.members...)
}

func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// LastActive 返回房间最近一次操作的时间，供空闲回收任务使用。
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

func (r *Room) touchLocked() {
	r.lastActive = time.Now()
}

// addMember 追加一个成员。按原始设计不拒绝重复加入（见 DESIGN.md）。
func (r *Room) addMember(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, connID)
	r.touchLocked()
}

// HasMember 报告连接是否在成员列表中。
func (r *Room) HasMember(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m == connID {
			return true
		}
	}
	return false
}

// SeedCards 在 joinRoom 消息到达时记录成员手牌槽位并扩充共享卡池。
func (r *Room) SeedCards(connID string, cards []domain.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.seed(connID, cards)
	r.touchLocked()
}

// Start 执行开局。只有房主可以开局，这是对原始实现的服务端加固。
// 重复开局不做保护，与基础设计一致：再次调用会重新发牌。
func (r *Room) Start(callerConnID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if callerConnID != r.owner {
		return Snapshot{}, ErrNotOwner
	}
	if err := r.state.start(r.members); err != nil {
		return Snapshot{}, err
	}
	r.started = true
	r.touchLocked()
	return r.state.snapshot(), nil
}

// PullCard 给成员抽一张卡并推进回合。
func (r *Room) PullCard(connID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.state.pull(connID, r.members); err != nil {
		return Snapshot{}, err
	}
	r.touchLocked()
	return r.state.snapshot(), nil
}

// PlayResult 是一次成功出牌的结果。
type PlayResult struct {
	Snapshot Snapshot
	Won      bool
	Winner   string
}

// PlayCard 执行出牌并做胜负判定。出错时状态保持不变。
func (r *Room) PlayCard(connID string, card domain.Card) (PlayResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	won, err := r.state.play(connID, card, r.members)
	if err != nil {
		return PlayResult{}, err
	}
	r.touchLocked()
	return PlayResult{
		Snapshot: r.state.snapshot(),
		Won:      won,
		Winner:   r.state.winner,
	}, nil
}

// LeaveResult 描述一次成员离开后的房间状况。
type LeaveResult struct {
	WasMember bool
	Members   []string
	Started   bool
	NonViable bool // 成员数低于 2，需要广播 resetGame 并调度清理
	Snapshot  Snapshot
}

// RemoveMember 把成员从房间移除。若游戏已开始则删除其手牌，
// 且当其正持有回合时把当前玩家重置为剩余成员中的第一个。
func (r *Room) RemoveMember(connID string) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 与原始实现一致，移除该连接的所有出现（重复加入时一并清掉）
	was := false
	kept := r.members[:0]
	for _, m := range r.members {
		if m == connID {
			was = true
			continue
		}
		kept = append(kept, m)
	}
	r.members = kept

	if was && r.started {
		r.state.removeMember(connID, r.members)
	}
	r.touchLocked()

	return LeaveResult{
		WasMember: was,
		Members:   append([]string(nil), r.members...),
		Started:   r.started,
		NonViable: len(r.members) < 2,
		Snapshot:  r.state.snapshot(),
	}
}

// StateSnapshot 返回当前游戏状态的深拷贝视图。
func (r *Room) StateSnapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.snapshot()
}
