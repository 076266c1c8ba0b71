package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vastavikadi/BeatBRAWL/internal/game"
)

// RoomHandler 封装房间创建和加入的 HTTP 处理逻辑。房间是纯内存
// 实体，由 Registry 持有，不落库。
type RoomHandler struct {
	registry *game.Registry
}

// NewRoomHandler 创建 RoomHandler 实例。
func NewRoomHandler(registry *game.Registry) *RoomHandler {
	return &RoomHandler{registry: registry}
}

// CreateRoomRequest 是创建房间的请求体。connectionId 是创建者的
// websocket 连接标识，它同时成为房主标识。
type CreateRoomRequest struct {
	ConnectionID string `json:"connectionId" binding:"required"`
}

// CreateRoomResponse 是创建房间成功的响应体。
type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
}

// CreateRoom 处理创建新房间的请求。
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: connectionId is required")
		return
	}

	room := h.registry.CreateRoom(req.ConnectionID)

	logrus.WithFields(logrus.Fields{
		"room_id": room.ID(),
		"owner":   req.ConnectionID,
	}).Info("Handler.CreateRoom: Room created successfully")
	c.JSON(http.StatusOK, CreateRoomResponse{RoomID: room.ID()})
}

// JoinRoomRequest 是加入房间的请求体。
type JoinRoomRequest struct {
	RoomID       string `json:"roomId" binding:"required"`
	ConnectionID string `json:"connectionId" binding:"required"`
}

// JoinRoomResponse 是加入房间成功的响应体。
type JoinRoomResponse struct {
	Message string   `json:"message"`
	RoomID  string   `json:"roomId"`
	Players []string `json:"roomPlayers"`
}

// JoinRoom 登记房间成员资格。手牌发放发生在 websocket 的 joinRoom
// 事件里，这里只追加成员列表。
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.JoinRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: roomId and connectionId are required")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": req.RoomID, "conn_id": req.ConnectionID})

	room, err := h.registry.JoinRoom(req.RoomID, req.ConnectionID)
	if err != nil {
		if errors.Is(err, game.ErrRoomNotFound) {
			logCtx.Warn("Handler.JoinRoom: Room not found")
			ErrorResponse(c, http.StatusNotFound, "Room not found")
		} else {
			logCtx.WithError(err).Error("Handler.JoinRoom: Failed to join room")
			ErrorResponse(c, http.StatusInternalServerError, "Failed to join room due to server error")
		}
		return
	}

	logCtx.Info("Handler.JoinRoom: Connection joined room")
	c.JSON(http.StatusOK, JoinRoomResponse{
		Message: "Joined room successfully",
		RoomID:  room.ID(),
		Players: room.Members(),
	})
}
