package core

import (
	"sync"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

// memberSession implements MemberSession by pairing user meta + transport.
// The signal connection and the display name are both rewritten on
// reconnection takeover while rooms keep reading them, so access is
// guarded. The user entity itself stays as minted.
type memberSession struct {
	user *domain.User

	mu       sync.RWMutex
	username string
	conn     SignalConnection
}

func NewMemberSession(user *domain.User) MemberSession {
	return &memberSession{user: user, username: user.Username}
}

func (m *memberSession) User() *domain.User { return m.user }

func (m *memberSession) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.username
}

func (m *memberSession) SetUsername(name string) {
	m.mu.Lock()
	m.username = name
	m.mu.Unlock()
}

func (m *memberSession) Signal() SignalConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn
}

func (m *memberSession) UpdateSignal(conn SignalConnection) MemberSession {
	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
	return m
}
