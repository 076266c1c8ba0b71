package hub

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024 // joinRoom 携带整副卡组，需要比纯文本聊天大的上限
)

// Client 代表一个连接到 Hub 的 WebSocket 客户端。
// connID 与 roomID 在首个 joinRoom 消息到达时由派发循环绑定，
// 此后只在派发循环的 goroutine 中读写。
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	connID string // 客户端自报的连接标识（原始实现中的 socket id）
	roomID string // 最近加入的房间，用于断开时的快速路径

	sendClosed bool // 仅派发 goroutine 读写
}

// NewClient 创建 Client 实例。
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Run 启动客户端的读写 goroutine。
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

// readPump 把消息从 WebSocket 连接泵送到 Hub 的派发通道。
func (c *Client) readPump() {
	defer func() {
		// 请求 Hub 注销此客户端（触发防御性的全房间清扫）
		c.hub.queue(hubMessage{kind: msgUnregister, client: c})
		c.conn.Close()
		logrus.WithField("conn_id", c.connID).Info("readPump exited, unregistering client")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logCtx := logrus.WithField("conn_id", c.connID)
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed")
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		// 非阻塞入队，Hub 过载时丢弃该帧
		if !c.hub.queue(hubMessage{kind: msgFrame, client: c, raw: message}) {
			logrus.WithField("conn_id", c.connID).Warn("Hub message channel full, dropping client frame")
		}
	}
}

// writePump 把消息从 send 通道泵送到 WebSocket 连接。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 在注销时关闭了 send 通道
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithField("conn_id", c.connID).WithError(err).Warn("Failed to write message to websocket")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
