// Package dto 定义了 WebSocket 边界上的消息形状。入站消息在到达
// 游戏逻辑之前先被解析成带标签的变体并做结构校验，畸形负载统一在
// 这里被拒绝，而不是在状态变更深处引发未定义行为。
package dto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// 客户端到服务端的事件名。
const (
	EventJoinRoom    = "joinRoom"
	EventGetRoomInfo = "getRoomInfo"
	EventGameStart   = "gameStart"
	EventPullCard    = "pullCard"
	EventPlayerMove  = "playerMove"
	EventLeaveRoom   = "leaveRoom"
)

// 服务端到客户端的事件名。
const (
	EventJoinedRoom      = "joinedRoom"
	EventPlayerJoined    = "playerJoined"
	EventRoomInfo        = "roomInfo"
	EventStartGame       = "startGame"
	EventUpdateGameState = "updateGameState"
	EventGameWon         = "gameWon"
	EventPlayerLeft      = "playerLeft"
	EventResetGame       = "resetGame"
	EventRoomClosed      = "roomClosed"
	EventInvalidMove     = "invalidMove"
	EventError           = "error"
)

// ErrMalformedMessage 表示负载缺少必填字段或无法解析。
// 这类错误按消息粒度恢复：记录、丢弃，绝不拖垮派发循环。
var ErrMalformedMessage = errors.New("dto: malformed message")

// Envelope 是所有 WebSocket 帧的外层结构。
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinRoom 携带加入者的卡组，为房间的共享卡池播种。
type JoinRoom struct {
	RoomID       string        `json:"roomId"`
	Cards        []domain.Card `json:"cards"`
	ConnectionID string        `json:"connectionId"`
}

// GetRoomInfo 只读查询当前成员列表与房主。
type GetRoomInfo struct {
	RoomID string `json:"roomId"`
}

// GameStart 由房主发出，触发发牌并进入对局。
type GameStart struct {
	RoomID string `json:"roomId"`
}

// PullCard 抽一张卡并推进回合。
type PullCard struct {
	RoomID       string `json:"roomId"`
	ConnectionID string `json:"connectionId"`
}

// PlayerMove 打出一张手牌。
type PlayerMove struct {
	RoomID       string      `json:"roomId"`
	ConnectionID string      `json:"connectionId"`
	SelectedCard domain.Card `json:"selectedPlayerCard"`
}

// LeaveRoom 把成员移出房间并重新平衡回合。
type LeaveRoom struct {
	RoomID       string `json:"roomId"`
	ConnectionID string `json:"connectionId"`
}

// Message 是入站消息的带标签联合：恰好一个变体字段非 nil，
// 由 Decode 根据事件名填充。
type Message struct {
	Event       string
	JoinRoom    *JoinRoom
	GetRoomInfo *GetRoomInfo
	GameStart   *GameStart
	PullCard    *PullCard
	PlayerMove  *PlayerMove
	LeaveRoom   *LeaveRoom
}

// Decode 解析一帧原始数据为带标签的消息变体并校验必填字段。
// 未知事件名和缺失字段都映射为 ErrMalformedMessage。
func Decode(raw []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	msg := Message{Event: env.Event}

	switch env.Event {
	case EventJoinRoom:
		var d JoinRoom
		if err := unmarshalData(env.Data, &d); err != nil {
			return Message{}, err
		}
		if d.RoomID == "" || d.ConnectionID == "" {
			return Message{}, fmt.Errorf("%w: joinRoom requires roomId and connectionId", ErrMalformedMessage)
		}
		msg.JoinRoom = &d
	case EventGetRoomInfo:
		var d GetRoomInfo
		if err := unmarshalData(env.Data, &d); err != nil {
			return Message{}, err
		}
		if d.RoomID == "" {
			return Message{}, fmt.Errorf("%w: getRoomInfo requires roomId", ErrMalformedMessage)
		}
		msg.GetRoomInfo = &d
	case EventGameStart:
		var d GameStart
		if err := unmarshalData(env.Data, &d); err != nil {
			return Message{}, err
		}
		if d.RoomID == "" {
			return Message{}, fmt.Errorf("%w: gameStart requires roomId", ErrMalformedMessage)
		}
		msg.GameStart = &d
	case EventPullCard:
		var d PullCard
		if err := unmarshalData(env.Data, &d); err != nil {
			return Message{}, err
		}
		if d.RoomID == "" || d.ConnectionID == "" {
			return Message{}, fmt.Errorf("%w: pullCard requires roomId and connectionId", ErrMalformedMessage)
		}
		msg.PullCard = &d
	case EventPlayerMove:
		var d PlayerMove
		if err := unmarshalData(env.Data, &d); err != nil {
			return Message{}, err
		}
		if d.RoomID == "" || d.ConnectionID == "" || d.SelectedCard.ID == "" {
			return Message{}, fmt.Errorf("%w: playerMove requires roomId, connectionId and selectedPlayerCard", ErrMalformedMessage)
		}
		msg.PlayerMove = &d
	case EventLeaveRoom:
		var d LeaveRoom
		if err := unmarshalData(env.Data, &d); err != nil {
			return Message{}, err
		}
		if d.RoomID == "" || d.ConnectionID == "" {
			return Message{}, fmt.Errorf("%w: leaveRoom requires roomId and connectionId", ErrMalformedMessage)
		}
		msg.LeaveRoom = &d
	default:
		return Message{}, fmt.Errorf("%w: unknown event %q", ErrMalformedMessage, env.Event)
	}
	return msg, nil
}

func unmarshalData(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformedMessage)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return nil
}
