// Package hub 是实时传输边界 (Session Gateway)：接收连接事件，
// 把入站消息派发到 Room/GameState 操作，并把产生的状态变化
// 扇出给房间内的全部成员。
package hub

import (
	"github.com/sirupsen/logrus"

	"github.com/vastavikadi/BeatBRAWL/internal/game"
)

// hubMessage 的内部种类。
const (
	msgRegister    = "register"
	msgUnregister  = "unregister"
	msgFrame       = "frame"
	msgRoomExpired = "roomExpired"
)

// hubMessage 是派发通道上传递的事件。
type hubMessage struct {
	kind   string
	client *Client
	raw    []byte // 仅 frame
	roomID string // 仅 roomExpired
}

// Hub 维护活跃客户端集合并驱动游戏逻辑。与白板不同，对局状态
// 的变更必须严格有序，所以入站帧在 Run 的单个 goroutine 里同步
// 处理完毕后才取下一条——rooms 分组表只被这个 goroutine 触碰，
// 不需要额外加锁。
type Hub struct {
	messageChan chan hubMessage

	// 广播分组，按房间号组织。map[roomID]map[*Client]bool
	rooms map[string]map[*Client]bool

	registry *game.Registry
}

// NewHub 创建 Hub 实例。registry 不能为 nil。
func NewHub(registry *game.Registry) *Hub {
	if registry == nil {
		panic("Registry cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan hubMessage, 512),
		rooms:       make(map[string]map[*Client]bool),
		registry:    registry,
	}
}

// Run 启动 Hub 的主事件循环，应在单独的 goroutine 中运行。
// 每条消息被完整处理（全部状态读写与广播）之后才处理下一条，
// 单条消息的故障只影响它自己的房间，不会拖垮循环。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for msg := range h.messageChan {
		switch msg.kind {
		case msgRegister:
			// 连接注册后等待它的 joinRoom，暂不进入任何分组
			log.WithField("remote", msg.client.conn.RemoteAddr().String()).Debug("Client registered to Hub")
		case msgUnregister:
			h.handleDisconnect(msg.client)
		case msgFrame:
			h.handleFrame(msg.client, msg.raw)
		case msgRoomExpired:
			h.handleRoomExpired(msg.roomID)
		default:
			log.Warnf("Hub: received unknown message kind: %s", msg.kind)
		}
	}
	log.Info("Hub is shutting down...")
}

// Register 把新升级的连接排入 Hub。
func (h *Hub) Register(client *Client) bool {
	return h.queue(hubMessage{kind: msgRegister, client: client})
}

// ExpireRoom 请求销毁一个房间并广播 roomClosed。由清理定时器和
// 空闲回收任务调用；实际销毁排回派发循环以保持串行化。
func (h *Hub) ExpireRoom(roomID string) {
	h.queue(hubMessage{kind: msgRoomExpired, roomID: roomID})
}

// Stop 关闭派发通道，Run 随之退出。
func (h *Hub) Stop() {
	close(h.messageChan)
}

// queue 非阻塞入队。返回 false 表示队列已满、消息被丢弃。
func (h *Hub) queue(msg hubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("kind", msg.kind).Warn("Hub message channel full, dropping message")
		return false
	}
}

// joinGroup 把客户端加入房间的广播分组。
func (h *Hub) joinGroup(roomID string, client *Client) {
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
}

// leaveGroup 把客户端移出房间的广播分组，分组空了就删掉条目。
func (h *Hub) leaveGroup(roomID string, client *Client) {
	if group, ok := h.rooms[roomID]; ok {
		delete(group, client)
		if len(group) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// broadcast 把一帧发给房间分组内除 exclude 外的所有客户端。
// 对单个客户端使用非阻塞发送，慢客户端不会阻塞整个广播。
func (h *Hub) broadcast(roomID string, frame []byte, exclude *Client) {
	group, ok := h.rooms[roomID]
	if !ok || len(group) == 0 {
		return
	}
	for client := range group {
		if client == exclude {
			continue
		}
		select {
		case client.send <- frame:
		default:
			logrus.WithFields(logrus.Fields{
				"room_id": roomID,
				"conn_id": client.connID,
			}).Warn("Client send channel full during broadcast, skipping")
		}
	}
}

// unicast 把一帧发给单个客户端。
func (h *Hub) unicast(client *Client, frame []byte) {
	select {
	case client.send <- frame:
	default:
		logrus.WithField("conn_id", client.connID).Warn("Client send channel full, unicast dropped")
	}
}
