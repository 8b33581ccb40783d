package core

import "github.com/0dayMonkey/drawlima-back/internal/domain"

// SessionID identifies one transport connection, distinct from the
// durable user identity which survives reconnects.
type SessionID string

// MemberSession binds a domain.User and its transport endpoint.
// This is what a room stores and fans out to. The display name is owned
// by the session: reconnects may rename the user while rooms read it.
type MemberSession interface {
	User() *domain.User
	Username() string
	SetUsername(string)
	Signal() SignalConnection
	UpdateSignal(SignalConnection) MemberSession
}
