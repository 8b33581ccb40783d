package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/core"
	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

// StartStroke opens a new active stroke owned by the sender and relays
// the event to the rest of the room.
func (c *Coordinator) StartStroke(uid domain.UserID, id domain.StrokeID, p domain.Point, color string, width float64) {
	room, ok := c.RoomOf(uid)
	if !ok {
		return
	}
	if !room.StartStroke(id, uid, p, color, width) {
		return
	}
	c.BroadcastRoom(room, StrokeStartMsg{
		Type:     "start_stroke",
		StrokeID: id,
		OwnerID:  uid,
		Point:    p,
		Color:    color,
		Width:    width,
	}, uid)
}

// ExtendStroke appends one point to an active stroke. Chunks for a
// stroke that already ended are dropped without relaying.
func (c *Coordinator) ExtendStroke(uid domain.UserID, id domain.StrokeID, p domain.Point) {
	room, ok := c.RoomOf(uid)
	if !ok {
		return
	}
	if !room.ExtendStroke(id, p) {
		return
	}
	c.BroadcastRoom(room, DrawChunkMsg{
		Type:     "draw_chunk",
		StrokeID: id,
		OwnerID:  uid,
		Point:    p,
	}, uid)
}

// FinishStroke promotes the stroke into the room's completed log and
// flushes a durable snapshot if a sink is configured.
func (c *Coordinator) FinishStroke(uid domain.UserID, id domain.StrokeID) {
	room, ok := c.RoomOf(uid)
	if !ok {
		return
	}
	if _, ok := room.FinishStroke(id); !ok {
		return
	}
	c.BroadcastRoom(room, StrokeEndMsg{Type: "end_stroke", StrokeID: id, OwnerID: uid}, uid)
	c.saveSnapshot(room)
}

// DeleteStroke removes a completed stroke. Only the owner may delete; a
// mismatch is logged and silently refused so stroke ownership is never
// leaked to other users.
func (c *Coordinator) DeleteStroke(uid domain.UserID, id domain.StrokeID) {
	room, ok := c.RoomOf(uid)
	if !ok {
		return
	}
	if err := room.DeleteStroke(id, uid); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("user", string(uid)).Str("stroke", string(id)).Msg("stroke delete refused")
		return
	}
	c.BroadcastRoom(room, StrokeDeleteMsg{Type: "delete_stroke", StrokeID: id, OwnerID: uid}, uid)
	c.saveSnapshot(room)
}

// CursorMove relays an ephemeral cursor position; nothing is persisted.
func (c *Coordinator) CursorMove(uid domain.UserID, x, y float64) {
	room, ok := c.RoomOf(uid)
	if !ok {
		return
	}
	sess, ok := c.Registry.SessionOf(uid)
	if !ok {
		return
	}
	c.BroadcastRoom(room, CursorUpdateMsg{
		Type:     "cursor_update",
		UserID:   uid,
		Username: sess.Username(),
		X:        x,
		Y:        y,
	}, uid)
}

func (c *Coordinator) saveSnapshot(room core.RoomService) {
	if c.Saver == nil {
		return
	}
	roomID := room.Room().ID
	strokes := room.CompletedSnapshot()
	go func() {
		if err := c.Saver.Save(context.Background(), roomID, strokes); err != nil {
			log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(roomID)).Msg("snapshot save failed")
		}
	}()
}
