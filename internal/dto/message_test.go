package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastavikadi/BeatBRAWL/internal/dto"
)

func TestDecode_JoinRoom(t *testing.T) {
	raw := []byte(`{
		"event": "joinRoom",
		"data": {
			"roomId": "abc123",
			"connectionId": "conn-1",
			"cards": [{"id": "c1", "name": "Song One", "artist": "A", "genre": "rock", "playtime": 210, "year": 1999}]
		}
	}`)

	msg, err := dto.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, msg.JoinRoom)
	assert.Equal(t, dto.EventJoinRoom, msg.Event)
	assert.Equal(t, "abc123", msg.JoinRoom.RoomID)
	assert.Equal(t, "conn-1", msg.JoinRoom.ConnectionID)
	require.Len(t, msg.JoinRoom.Cards, 1)
	assert.Equal(t, "c1", msg.JoinRoom.Cards[0].ID)
}

func TestDecode_PlayerMove(t *testing.T) {
	raw := []byte(`{
		"event": "playerMove",
		"data": {
			"roomId": "abc123",
			"connectionId": "conn-1",
			"selectedPlayerCard": {"id": "c7", "name": "Seven"}
		}
	}`)

	msg, err := dto.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, msg.PlayerMove)
	assert.Equal(t, "c7", msg.PlayerMove.SelectedCard.ID)
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := dto.Decode([]byte(`{not json`))
	assert.ErrorIs(t, err, dto.ErrMalformedMessage)
}

func TestDecode_UnknownEvent(t *testing.T) {
	_, err := dto.Decode([]byte(`{"event": "teleport", "data": {}}`))
	assert.ErrorIs(t, err, dto.ErrMalformedMessage)
}

func TestDecode_MissingData(t *testing.T) {
	_, err := dto.Decode([]byte(`{"event": "joinRoom"}`))
	assert.ErrorIs(t, err, dto.ErrMalformedMessage)
}

func TestDecode_MissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"joinRoom missing connectionId":   `{"event": "joinRoom", "data": {"roomId": "r1"}}`,
		"getRoomInfo missing roomId":      `{"event": "getRoomInfo", "data": {}}`,
		"gameStart missing roomId":        `{"event": "gameStart", "data": {}}`,
		"pullCard missing connectionId":   `{"event": "pullCard", "data": {"roomId": "r1"}}`,
		"playerMove missing card":         `{"event": "playerMove", "data": {"roomId": "r1", "connectionId": "c1"}}`,
		"leaveRoom missing roomId":        `{"event": "leaveRoom", "data": {"connectionId": "c1"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := dto.Decode([]byte(raw))
			assert.ErrorIs(t, err, dto.ErrMalformedMessage)
		})
	}
}

func TestEncode_FrameShape(t *testing.T) {
	frame, err := dto.Encode(dto.EventResetGame, dto.ResetGame{Message: "Not enough players to continue"})
	require.NoError(t, err)

	var decoded struct {
		Event string `json:"event"`
		Data  struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &decoded))
	assert.Equal(t, "resetGame", decoded.Event)
	assert.Equal(t, "Not enough players to continue", decoded.Data.Message)
}

func TestEncode_NilDataOmitted(t *testing.T) {
	frame, err := dto.Encode(dto.EventRoomClosed, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event": "roomClosed"}`, string(frame))
}
