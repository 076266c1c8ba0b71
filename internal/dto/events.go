package dto

import (
	"encoding/json"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
	"github.com/vastavikadi/BeatBRAWL/internal/game"
)

// RoomMembership 是 joinedRoom / playerJoined / roomInfo 的负载。
type RoomMembership struct {
	RoomPlayers []string `json:"roomPlayers"`
	RoomOwner   string   `json:"roomOwner"`
}

// StartGame 是开局广播的负载。
type StartGame struct {
	GameState game.Snapshot `json:"gameState"`
}

// GameWon 是胜负已分时的广播负载。
type GameWon struct {
	Winner      string                 `json:"winner"`
	PlayerCards map[string][]domain.Card `json:"playerCardsData"`
}

// PlayerLeft 是成员离开时发给剩余成员的负载。
type PlayerLeft struct {
	RoomPlayers []string      `json:"roomPlayers"`
	LeftPlayer  string        `json:"leftPlayer"`
	GameState   game.Snapshot `json:"gameState"`
}

// ResetGame 通知房间成员不足、对局作废。
type ResetGame struct {
	Message string `json:"message"`
}

// Encode 把出站事件封装为线缆帧。负载为 nil 时 data 字段省略。
func Encode(event string, data interface{}) ([]byte, error) {
	frame := struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data,omitempty"`
	}{Event: event, Data: data}
	return json.Marshal(frame)
}
