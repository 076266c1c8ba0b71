package hub

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/vastavikadi/BeatBRAWL/internal/dto"
	"github.com/vastavikadi/BeatBRAWL/internal/game"
)

// handleFrame 把一帧入站数据解析为带标签的消息并路由到对应的
// 游戏操作。所有错误都局限于这一条消息：畸形负载和缺失房间只会
// 给发送方回一条定向通知，绝不影响其他房间或连接。
func (h *Hub) handleFrame(client *Client, raw []byte) {
	msg, err := dto.Decode(raw)
	if err != nil {
		logrus.WithError(err).WithField("conn_id", client.connID).Warn("Dropping malformed frame")
		h.sendError(client, "Malformed message")
		return
	}

	switch msg.Event {
	case dto.EventJoinRoom:
		h.handleJoinRoom(client, msg.JoinRoom)
	case dto.EventGetRoomInfo:
		h.handleGetRoomInfo(client, msg.GetRoomInfo)
	case dto.EventGameStart:
		h.handleGameStart(client, msg.GameStart)
	case dto.EventPullCard:
		h.handlePullCard(client, msg.PullCard)
	case dto.EventPlayerMove:
		h.handlePlayerMove(client, msg.PlayerMove)
	case dto.EventLeaveRoom:
		h.handleLeaveRoom(client, msg.LeaveRoom)
	}
}

// handleJoinRoom 把连接并入房间的广播分组并为共享卡池播种。
// 成员资格本身在此之前由 HTTP 的 join-room 端点写入。
func (h *Hub) handleJoinRoom(client *Client, d *dto.JoinRoom) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": d.RoomID, "conn_id": d.ConnectionID})

	room, ok := h.registry.GetRoom(d.RoomID)
	if !ok {
		logCtx.Warn("joinRoom: room not found")
		h.sendError(client, "Room not found")
		return
	}

	room.SeedCards(d.ConnectionID, d.Cards)
	client.connID = d.ConnectionID
	client.roomID = d.RoomID
	h.joinGroup(d.RoomID, client)

	// 房间恢复到可存续规模时撤掉挂起的销毁定时器
	if len(room.Members()) >= 2 {
		h.registry.CancelCleanup(d.RoomID)
	}

	membership := dto.RoomMembership{RoomPlayers: room.Members(), RoomOwner: room.Owner()}
	h.sendEvent(client, dto.EventJoinedRoom, membership)
	h.broadcastEvent(d.RoomID, dto.EventPlayerJoined, membership, nil)
	logCtx.Info("Connection joined room broadcast group")
}

func (h *Hub) handleGetRoomInfo(client *Client, d *dto.GetRoomInfo) {
	room, ok := h.registry.GetRoom(d.RoomID)
	if !ok {
		h.sendError(client, "Room not found")
		return
	}
	h.sendEvent(client, dto.EventRoomInfo, dto.RoomMembership{
		RoomPlayers: room.Members(),
		RoomOwner:   room.Owner(),
	})
}

// handleGameStart 执行开局。只有房主可以开局——原始实现只在
// 客户端 UI 里约束这一点，这里改为服务端显式鉴权。
func (h *Hub) handleGameStart(client *Client, d *dto.GameStart) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": d.RoomID, "conn_id": client.connID})

	room, ok := h.registry.GetRoom(d.RoomID)
	if !ok {
		h.sendError(client, "Room not found")
		return
	}
	snap, err := room.Start(client.connID)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrNotOwner):
			logCtx.Warn("gameStart rejected: caller is not the room owner")
			h.sendError(client, "Only the room owner can start the game")
		case errors.Is(err, game.ErrEmptyCardPool):
			logCtx.Warn("gameStart rejected: no cards seeded")
			h.sendError(client, "No cards in the room yet")
		default:
			logCtx.WithError(err).Error("gameStart failed")
			h.sendError(client, "Failed to start game")
		}
		return
	}
	h.broadcastEvent(d.RoomID, dto.EventStartGame, dto.StartGame{GameState: snap}, nil)
	logCtx.Info("Game started")
}

func (h *Hub) handlePullCard(client *Client, d *dto.PullCard) {
	room, ok := h.registry.GetRoom(d.RoomID)
	if !ok {
		h.sendError(client, "Room not found")
		return
	}
	snap, err := room.PullCard(d.ConnectionID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"room_id": d.RoomID, "conn_id": d.ConnectionID,
		}).Warn("pullCard failed")
		h.sendError(client, "Failed to pull card")
		return
	}
	h.broadcastEvent(d.RoomID, dto.EventUpdateGameState, snap, nil)
}

// handlePlayerMove 执行出牌。非当前玩家的出牌只给违规者回一条
// invalidMove，状态保持不变。
func (h *Hub) handlePlayerMove(client *Client, d *dto.PlayerMove) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": d.RoomID, "conn_id": d.ConnectionID})

	room, ok := h.registry.GetRoom(d.RoomID)
	if !ok {
		h.sendError(client, "Room not found")
		return
	}
	res, err := room.PlayCard(d.ConnectionID, d.SelectedCard)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrNotYourTurn):
			logCtx.Warn("playerMove rejected: not this player's turn")
			h.sendInvalidMove(client, "It's not your turn.")
		case errors.Is(err, game.ErrCardNotInHand):
			logCtx.Warn("playerMove rejected: card not in hand")
			h.sendInvalidMove(client, "You don't hold that card.")
		default:
			logCtx.WithError(err).Warn("playerMove failed")
			h.sendError(client, "Failed to play card")
		}
		return
	}

	if res.Won {
		logCtx.WithField("winner", res.Winner).Info("Game won")
		h.broadcastEvent(d.RoomID, dto.EventGameWon, dto.GameWon{
			Winner:      res.Winner,
			PlayerCards: res.Snapshot.PlayerCards,
		}, nil)
		h.registry.ScheduleCleanup(d.RoomID)
		return
	}
	h.broadcastEvent(d.RoomID, dto.EventUpdateGameState, res.Snapshot, nil)
}

func (h *Hub) handleLeaveRoom(client *Client, d *dto.LeaveRoom) {
	room, ok := h.registry.GetRoom(d.RoomID)
	if !ok {
		h.sendError(client, "Room not found")
		return
	}
	res := room.RemoveMember(d.ConnectionID)
	h.afterLeave(d.RoomID, d.ConnectionID, res, client)
	h.leaveGroup(d.RoomID, client)
	if client.roomID == d.RoomID {
		client.roomID = ""
	}
}

// afterLeave 广播成员离开后的状态并在房间不可存续时调度清理。
func (h *Hub) afterLeave(roomID, connID string, res game.LeaveResult, leaver *Client) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "conn_id": connID})
	if !res.WasMember {
		logCtx.Warn("leave: connection was not a member")
		return
	}

	h.broadcastEvent(roomID, dto.EventPlayerLeft, dto.PlayerLeft{
		RoomPlayers: res.Members,
		LeftPlayer:  connID,
		GameState:   res.Snapshot,
	}, leaver)

	if res.NonViable {
		logCtx.Info("Room below minimum player count, scheduling cleanup")
		h.broadcastEvent(roomID, dto.EventResetGame, dto.ResetGame{
			Message: "Not enough players to continue",
		}, nil)
		h.registry.ScheduleCleanup(roomID)
	} else if res.Started {
		h.broadcastEvent(roomID, dto.EventUpdateGameState, res.Snapshot, nil)
	}
	logCtx.Info("Member left room")
}

// handleDisconnect 处理传输层断开：网关不能假定客户端先发送了
// leaveRoom，所以对所有仍把该连接列为成员的房间做防御性清扫。
func (h *Hub) handleDisconnect(client *Client) {
	if client.connID != "" {
		for _, sweep := range h.registry.SweepConnection(client.connID) {
			h.afterLeave(sweep.RoomID, client.connID, sweep.Leave, client)
		}
	}
	for roomID := range h.rooms {
		h.leaveGroup(roomID, client)
	}
	// 关闭 send 通道让 writePump 退出。注销消息每个客户端只入队
	// 一次，sendClosed 只在派发 goroutine 里读写。
	if !client.sendClosed {
		close(client.send)
		client.sendClosed = true
	}
	logrus.WithField("conn_id", client.connID).Info("Client unregistered from Hub")
}

// handleRoomExpired 执行延迟销毁：移除房间并广播 roomClosed。
func (h *Hub) handleRoomExpired(roomID string) {
	if _, ok := h.registry.GetRoom(roomID); !ok {
		return
	}
	logrus.WithField("room_id", roomID).Info("Cleaning up room")
	h.registry.RemoveRoom(roomID)
	h.broadcastEvent(roomID, dto.EventRoomClosed, nil, nil)
	delete(h.rooms, roomID)
}

// --- 出站辅助 ---

func (h *Hub) sendEvent(client *Client, event string, data interface{}) {
	frame, err := dto.Encode(event, data)
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to encode unicast event")
		return
	}
	h.unicast(client, frame)
}

func (h *Hub) broadcastEvent(roomID, event string, data interface{}, exclude *Client) {
	frame, err := dto.Encode(event, data)
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to encode broadcast event")
		return
	}
	h.broadcast(roomID, frame, exclude)
}

func (h *Hub) sendError(client *Client, reason string) {
	h.sendEvent(client, dto.EventError, reason)
}

func (h *Hub) sendInvalidMove(client *Client, reason string) {
	h.sendEvent(client, dto.EventInvalidMove, reason)
}
