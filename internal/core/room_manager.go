package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

type roomManagerImpl struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]RoomService
	timers map[domain.RoomID]*time.Timer
	grace  time.Duration
}

// NewRoomManager builds a room store whose empty rooms are deleted only
// after staying empty through grace.
func NewRoomManager(grace time.Duration) RoomManager {
	return &roomManagerImpl{
		rooms:  make(map[domain.RoomID]RoomService),
		timers: make(map[domain.RoomID]*time.Timer),
		grace:  grace,
	}
}

func (m *roomManagerImpl) CreateRoom(name domain.RoomName, size domain.CanvasSize, creator domain.UserID) (RoomService, error) {
	room, err := domain.NewRoom(name, size, creator)
	if err != nil {
		return nil, err
	}
	svc := NewRoomService(room)
	m.mu.Lock()
	m.rooms[room.ID] = svc
	m.mu.Unlock()
	log.Info().Str("module", "core.rooms").Str("room", string(room.ID)).Str("name", string(name)).Str("creator", string(creator)).Msg("room created")
	return svc, nil
}

func (m *roomManagerImpl) GetRoom(id domain.RoomID) (RoomService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	svc, ok := m.rooms[id]
	return svc, ok
}

func (m *roomManagerImpl) List() []RoomSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomSummary, 0, len(m.rooms))
	for _, svc := range m.rooms {
		r := svc.Room()
		out = append(out, RoomSummary{
			ID:        r.ID,
			Name:      r.Name,
			Size:      r.Size,
			Creator:   r.Creator,
			CreatedAt: r.CreatedAt,
			UserCount: svc.MemberCount(),
		})
	}
	return out
}

func (m *roomManagerImpl) StopRoom(id domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(id)
}

func (m *roomManagerImpl) stopLocked(id domain.RoomID) {
	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
	}
	delete(m.rooms, id)
	log.Info().Str("module", "core.rooms").Str("room", string(id)).Msg("room removed")
}

// ScheduleReap arms the grace timer for an empty room. Emptiness is
// re-checked when the timer fires; a join in between cancels the reap.
func (m *roomManagerImpl) ScheduleReap(id domain.RoomID, onReap func(RoomService)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return
	}
	if t, ok := m.timers[id]; ok {
		t.Stop()
	}
	m.timers[id] = time.AfterFunc(m.grace, func() { m.reap(id, onReap) })
	log.Info().Str("module", "core.rooms").Str("room", string(id)).Dur("grace", m.grace).Msg("room reap scheduled")
}

func (m *roomManagerImpl) CancelReap(id domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
		log.Info().Str("module", "core.rooms").Str("room", string(id)).Msg("room reap canceled")
	}
}

func (m *roomManagerImpl) reap(id domain.RoomID, onReap func(RoomService)) {
	m.mu.Lock()
	delete(m.timers, id)
	svc, ok := m.rooms[id]
	if !ok || svc.MemberCount() > 0 {
		m.mu.Unlock()
		return
	}
	m.stopLocked(id)
	m.mu.Unlock()

	log.Info().Str("module", "core.rooms").Str("room", string(id)).Msg("empty room reaped")
	if onReap != nil {
		onReap(svc)
	}
}
