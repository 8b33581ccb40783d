package app

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/core"
	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

// Coordinator sequences every inbound operation: state mutation through
// the registry and room manager, then fan-out through the broadcast
// helpers. Adapters only decode payloads and enforce nothing.
type Coordinator struct {
	Registry *Registry
	Rooms    core.RoomManager
	Policy   Policy
	Saver    core.SnapshotSaver
}

func NewCoordinator(reg *Registry, rooms core.RoomManager, policy Policy, saver core.SnapshotSaver) *Coordinator {
	return &Coordinator{Registry: reg, Rooms: rooms, Policy: policy, Saver: saver}
}

// Authenticate resolves identity for a connection and replies with the
// user's id, reconnection token and the current lobby listing.
func (c *Coordinator) Authenticate(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc, token, username string) (*AuthResult, error) {
	res, err := c.Registry.Authenticate(sid, conn, cancel, token, username)
	if err != nil {
		return nil, err
	}
	c.sendTo(res.Session, AuthenticatedMsg{
		Type:        "authenticated",
		UserID:      res.User.ID,
		Token:       res.Token,
		Whiteboards: c.Rooms.List(),
	})
	return res, nil
}

// Disconnect runs the room-leave side effects before the user record is
// dropped; leave needs the user's current room. A connection that was
// replaced by a takeover no longer owns the user and changes nothing.
func (c *Coordinator) Disconnect(sid core.SessionID, conn core.SignalConnection) {
	if user, ok := c.Registry.UserBySID(sid); ok && c.Registry.Current(sid, conn) {
		c.LeaveRoom(user.ID)
	}
	c.Registry.Remove(sid, conn)
}

func (c *Coordinator) sendTo(sess core.MemberSession, v any) {
	conn := sess.Signal()
	if conn == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("marshal unicast")
		return
	}
	_ = conn.TrySend(b)
}

// BroadcastRoom delivers v to every member of the room except exclude
// ("" excludes nobody). Delivery is best-effort; slow members go through
// the backpressure policy.
func (c *Coordinator) BroadcastRoom(room core.RoomService, v any, exclude domain.UserID) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("marshal broadcast")
		return
	}
	res := room.Broadcast(exclude, b)
	if c.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch c.Policy.OnBackPressure(room, slow) {
		case KickMember:
			c.Registry.Kick(slow)
		case DropFrame, NoAction:
		}
	}
}

// BroadcastAll delivers v to every authenticated user, in a room or not.
// Used only for lobby-wide room list updates.
func (c *Coordinator) BroadcastAll(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("marshal lobby broadcast")
		return
	}
	for _, sess := range c.Registry.Sessions() {
		conn := sess.Signal()
		if conn == nil {
			continue
		}
		_ = conn.TrySend(b)
	}
}
