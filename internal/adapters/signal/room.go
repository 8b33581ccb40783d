package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

func (ctl *Controller) handleCreateRoom(user *domain.User, conn *WsConn, data []byte) {
	type createPayload struct {
		Type string            `json:"type"`
		Name string            `json:"name"`
		Size domain.CanvasSize `json:"size"`
	}
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create_room payload")
		return
	}

	log.Info().Str("module", "signal").Str("user", string(user.ID)).Str("name", p.Name).Msg("create_room")
	if _, err := ctl.Coord.CreateRoom(user.ID, domain.RoomName(p.Name), p.Size); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("user", string(user.ID)).Msg("create_room refused")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_room_name",
		})
	}
}

func (ctl *Controller) handleJoinRoom(user *domain.User, conn *WsConn, data []byte) {
	type joinPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join_room payload")
		return
	}

	log.Info().Str("module", "signal").Str("user", string(user.ID)).Str("room", p.RoomID).Msg("join_room")
	// A miss here is not an error worth surfacing: the room may have been
	// reaped between the client's listing and its join.
	ctl.Coord.JoinRoom(user.ID, domain.RoomID(p.RoomID))
}

// handleLeaveRoom returns the user to the lobby without dropping the
// connection.
func (ctl *Controller) handleLeaveRoom(user *domain.User, conn *WsConn) {
	log.Info().Str("module", "signal").Str("user", string(user.ID)).Msg("leave_room")
	ctl.Coord.LeaveRoom(user.ID)
	ctl.sendJSON(conn, map[string]any{
		"type": "left_room",
	})
}
