package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/auth"
	"github.com/0dayMonkey/drawlima-back/internal/core"
	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

type userEntry struct {
	User    *domain.User
	Session core.MemberSession
	SID     core.SessionID
	RoomID  domain.RoomID
	Cancel  context.CancelFunc
}

// Registry is the identity manager: it maps durable user ids to their
// single live connection and keeps the connection→user lookup the
// dispatcher needs for its auth precondition.
type Registry struct {
	mu     sync.RWMutex
	tokens *auth.TokenService
	byUser map[domain.UserID]*userEntry
	bySID  map[core.SessionID]domain.UserID
}

func NewRegistry(tokens *auth.TokenService) *Registry {
	return &Registry{
		tokens: tokens,
		byUser: make(map[domain.UserID]*userEntry),
		bySID:  make(map[core.SessionID]domain.UserID),
	}
}

// AuthResult is what a successful authenticate hands back to the adapter.
type AuthResult struct {
	User    *domain.User
	Session core.MemberSession
	Token   string
	Resumed bool
}

// Authenticate binds a connection to a user identity. A valid token
// resumes the existing user record and forcibly terminates its previous
// live connection; anything else mints a fresh identity and token.
func (r *Registry) Authenticate(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc, token, username string) (*AuthResult, error) {
	var uid domain.UserID
	if token != "" {
		id, err := r.tokens.Verify(token)
		if err != nil {
			log.Warn().Err(err).Str("module", "app.registry").Str("sid", string(sid)).Msg("invalid reconnection token")
		} else {
			uid = id
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if uid != "" {
		if e, ok := r.byUser[uid]; ok {
			res, err := r.takeOverLocked(e, sid, conn, cancel, username)
			if err == nil {
				res.Token = token
			}
			return res, err
		}
		// Valid token but no live record (e.g. server restarted): recreate
		// the record under the token's id so membership stays logically
		// continuous for the client.
		user := &domain.User{ID: uid}
		if err := user.SetUsername(username); err != nil {
			return nil, err
		}
		return r.registerLocked(sid, conn, cancel, user, token)
	}

	user, err := domain.NewUser(username)
	if err != nil {
		return nil, err
	}
	minted, err := r.tokens.Mint(user.ID)
	if err != nil {
		return nil, err
	}
	return r.registerLocked(sid, conn, cancel, user, minted)
}

func (r *Registry) registerLocked(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc, user *domain.User, token string) (*AuthResult, error) {
	sess := core.NewMemberSession(user).UpdateSignal(conn)
	r.byUser[user.ID] = &userEntry{User: user, Session: sess, SID: sid, Cancel: cancel}
	r.bySID[sid] = user.ID
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(user.ID)).Str("username", user.Username).Msg("authenticated new user")
	return &AuthResult{User: user, Session: sess, Token: token}, nil
}

func (r *Registry) takeOverLocked(e *userEntry, sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc, username string) (*AuthResult, error) {
	if username != "" {
		if err := domain.ValidateUsername(username); err != nil {
			return nil, err
		}
		e.Session.SetUsername(username)
	}
	// The ghost is identified by its connection, not its session id: a
	// reconnect from the same browser can arrive under the same id.
	if old := e.Session.Signal(); old != nil && old != conn {
		delete(r.bySID, e.SID)
		old.Close()
		if e.Cancel != nil {
			e.Cancel()
		}
	}
	e.Session.UpdateSignal(conn)
	e.SID = sid
	e.Cancel = cancel
	r.bySID[sid] = e.User.ID
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(e.User.ID)).Msg("reconnection takeover")
	return &AuthResult{User: e.User, Session: e.Session, Resumed: true}, nil
}

// UserBySID resolves the authenticated user of a connection, if any.
func (r *Registry) UserBySID(sid core.SessionID) (*domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uid, ok := r.bySID[sid]
	if !ok {
		return nil, false
	}
	e, ok := r.byUser[uid]
	if !ok {
		return nil, false
	}
	return e.User, true
}

func (r *Registry) SessionOf(uid domain.UserID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byUser[uid]
	if !ok {
		return nil, false
	}
	return e.Session, true
}

// RoomOf reports the room the user is currently in, "" meaning lobby.
func (r *Registry) RoomOf(uid domain.UserID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byUser[uid]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

func (r *Registry) SetRoom(uid domain.UserID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byUser[uid]; ok {
		e.RoomID = roomID
	}
}

// Current reports whether conn is still the live connection bound to
// sid. A connection that lost a takeover is no longer current.
func (r *Registry) Current(sid core.SessionID, conn core.SignalConnection) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uid, ok := r.bySID[sid]
	if !ok {
		return false
	}
	e, ok := r.byUser[uid]
	return ok && e.SID == sid && e.Session.Signal() == conn
}

// Remove deletes the user record, but only if conn is still its live
// connection; a stale connection closing after a takeover is a no-op
// even when the takeover reused its session id.
func (r *Registry) Remove(sid core.SessionID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.bySID[sid]
	if !ok {
		return
	}
	e, ok := r.byUser[uid]
	if !ok {
		delete(r.bySID, sid)
		return
	}
	if e.SID != sid || e.Session.Signal() != conn {
		return
	}
	delete(r.bySID, sid)
	delete(r.byUser, uid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(uid)).Msg("user removed")
}

// Kick force-closes a user's live connection.
func (r *Registry) Kick(uid domain.UserID) {
	r.mu.RLock()
	e, ok := r.byUser[uid]
	r.mu.RUnlock()
	if !ok {
		return
	}
	if conn := e.Session.Signal(); conn != nil {
		conn.Close()
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Warn().Str("module", "app.registry").Str("user", string(uid)).Msg("kicked user connection")
}

// Sessions snapshots every authenticated user's session, for lobby-wide
// fan-out.
func (r *Registry) Sessions() []core.MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.MemberSession, 0, len(r.byUser))
	for _, e := range r.byUser {
		out = append(out, e.Session)
	}
	return out
}
