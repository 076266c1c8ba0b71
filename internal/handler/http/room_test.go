package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastavikadi/BeatBRAWL/internal/game"
)

func newRoomTestContext(t *testing.T, body string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest("POST", "/", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestRoomHandler_CreateRoom(t *testing.T) {
	reg := game.NewRegistry(time.Minute, func(string) {})
	defer reg.Stop()
	handler := NewRoomHandler(reg)

	w, c := newRoomTestContext(t, `{"connectionId": "conn-1"}`)
	handler.CreateRoom(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp CreateRoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.RoomID, 6)

	room, ok := reg.GetRoom(resp.RoomID)
	require.True(t, ok)
	assert.Equal(t, "conn-1", room.Owner())
}

func TestRoomHandler_CreateRoom_MissingConnectionID(t *testing.T) {
	reg := game.NewRegistry(time.Minute, func(string) {})
	defer reg.Stop()
	handler := NewRoomHandler(reg)

	w, c := newRoomTestContext(t, `{}`)
	handler.CreateRoom(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, reg.Len())
}

func TestRoomHandler_JoinRoom(t *testing.T) {
	reg := game.NewRegistry(time.Minute, func(string) {})
	defer reg.Stop()
	handler := NewRoomHandler(reg)
	room := reg.CreateRoom("conn-1")

	w, c := newRoomTestContext(t, `{"roomId": "`+room.ID()+`", "connectionId": "conn-2"}`)
	handler.JoinRoom(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp JoinRoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"conn-1", "conn-2"}, resp.Players)
}

func TestRoomHandler_JoinRoom_NotFound(t *testing.T) {
	reg := game.NewRegistry(time.Minute, func(string) {})
	defer reg.Stop()
	handler := NewRoomHandler(reg)

	w, c := newRoomTestContext(t, `{"roomId": "nope99", "connectionId": "conn-2"}`)
	handler.JoinRoom(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Room not found")
}
