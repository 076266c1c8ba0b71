package game

import "errors"

// 游戏层业务错误，由 Session Gateway 映射为对客户端的 error / invalidMove 消息。
var (
	ErrRoomNotFound  = errors.New("game: room not found")
	ErrNotOwner      = errors.New("game: only the room owner can start the game")
	ErrNotYourTurn   = errors.New("game: not this player's turn")
	ErrCardNotInHand = errors.New("game: selected card is not in player's hand")
	ErrUnknownMember = errors.New("game: connection is not a member of this room")
	ErrEmptyCardPool = errors.New("game: card pool is empty")
)
