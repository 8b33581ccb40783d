package app

import (
	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/core"
	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

// CreateRoom mints a room, implicitly joins its creator and publishes the
// updated lobby listing to everyone.
func (c *Coordinator) CreateRoom(uid domain.UserID, name domain.RoomName, size domain.CanvasSize) (core.RoomService, error) {
	room, err := c.Rooms.CreateRoom(name, size, uid)
	if err != nil {
		return nil, err
	}
	c.joinRoom(uid, room)
	if room.MemberCount() == 0 {
		// Creator vanished between auth and create; room starts its grace
		// period immediately instead of leaking.
		c.Rooms.ScheduleReap(room.Room().ID, func(core.RoomService) { c.PublishRoomList() })
	}
	c.PublishRoomList()
	return room, nil
}

// JoinRoom moves the user into the room. An unknown room id is dropped
// without a client-visible error: races with room deletion are expected.
func (c *Coordinator) JoinRoom(uid domain.UserID, roomID domain.RoomID) bool {
	room, ok := c.Rooms.GetRoom(roomID)
	if !ok {
		log.Warn().Str("module", "app.coordinator").Str("user", string(uid)).Str("room", string(roomID)).Msg("join: room not found")
		return false
	}
	c.joinRoom(uid, room)
	return true
}

// joinRoom applies leave-before-join: the old room is fully left,
// including its user_left broadcast, before any join side effect.
func (c *Coordinator) joinRoom(uid domain.UserID, room core.RoomService) {
	sess, ok := c.Registry.SessionOf(uid)
	if !ok {
		return
	}
	c.LeaveRoom(uid)

	roomID := room.Room().ID
	c.Rooms.CancelReap(roomID)
	room.AddMember(uid, sess)
	c.Registry.SetRoom(uid, roomID)

	c.sendTo(sess, JoinedRoomMsg{
		Type:          "joined_room",
		RoomID:        roomID,
		Name:          room.Room().Name,
		Size:          room.Room().Size,
		Strokes:       room.CompletedSnapshot(),
		ActiveStrokes: room.ActiveSnapshot(),
		Users:         room.MembersSnapshot(),
	})
	c.BroadcastRoom(room, UserJoinedMsg{
		Type: "user_joined",
		User: core.MemberDTO{ID: uid, Username: sess.Username()},
	}, uid)
	log.Info().Str("module", "app.coordinator").Str("user", string(uid)).Str("room", string(roomID)).Msg("joined room")
}

// LeaveRoom removes the user from its current room, discarding any
// strokes it was mid-drawing. No-op for users in the lobby.
func (c *Coordinator) LeaveRoom(uid domain.UserID) {
	roomID, ok := c.Registry.RoomOf(uid)
	if !ok {
		return
	}
	c.Registry.SetRoom(uid, "")

	room, ok := c.Rooms.GetRoom(roomID)
	if !ok {
		return
	}
	room.RemoveMember(uid)
	room.DiscardActiveOwnedBy(uid)
	c.BroadcastRoom(room, UserLeftMsg{Type: "user_left", UserID: uid}, uid)
	log.Info().Str("module", "app.coordinator").Str("user", string(uid)).Str("room", string(roomID)).Msg("left room")

	if room.MemberCount() == 0 {
		c.Rooms.ScheduleReap(roomID, func(reaped core.RoomService) {
			c.PublishRoomList()
		})
	}
}

// PublishRoomList pushes the lobby listing to every authenticated user.
func (c *Coordinator) PublishRoomList() {
	c.BroadcastAll(RoomListMsg{Type: "room_list_update", Whiteboards: c.Rooms.List()})
}

// RoomOf resolves the room the user currently draws in, for the
// in-a-room precondition of the drawing operations.
func (c *Coordinator) RoomOf(uid domain.UserID) (core.RoomService, bool) {
	roomID, ok := c.Registry.RoomOf(uid)
	if !ok {
		return nil, false
	}
	return c.Rooms.GetRoom(roomID)
}
