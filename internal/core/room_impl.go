package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room    *domain.Room
	mu      sync.RWMutex
	members map[domain.UserID]MemberSession
	strokes *strokeTable
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:    room,
		members: make(map[domain.UserID]MemberSession),
		strokes: newStrokeTable(),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) AddMember(uid domain.UserID, ms MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[uid] = ms
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("user", string(uid)).Msg("member added")
}

func (r *roomImpl) RemoveMember(uid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, uid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("user", string(uid)).Msg("member removed")
}

// Broadcast fans data out to every member except from. Sends are
// best-effort: a member whose buffer is full is reported as dropped, not
// waited on.
func (r *roomImpl) Broadcast(from domain.UserID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for uid, m := range r.members {
		if uid == from {
			continue
		}
		conn := m.Signal()
		if conn == nil {
			continue
		}
		if err := conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, uid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.members))
	for uid, ms := range r.members {
		out = append(out, MemberDTO{ID: uid, Username: ms.Username()})
	}
	return out
}

func (r *roomImpl) StartStroke(id domain.StrokeID, owner domain.UserID, first domain.Point, color string, width float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ok := r.strokes.Start(domain.NewStroke(id, owner, first, color, width))
	if !ok {
		log.Warn().Str("module", "core.room").Str("room", string(r.room.ID)).Str("stroke", string(id)).Msg("duplicate stroke start")
	}
	return ok
}

func (r *roomImpl) ExtendStroke(id domain.StrokeID, p domain.Point) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strokes.Extend(id, p)
}

func (r *roomImpl) FinishStroke(id domain.StrokeID) (*domain.Stroke, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strokes.Finish(id)
}

func (r *roomImpl) DeleteStroke(id domain.StrokeID, requester domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strokes.Delete(id, requester)
}

func (r *roomImpl) DiscardActiveOwnedBy(owner domain.UserID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.strokes.DiscardOwnedActive(owner)
	if n > 0 {
		log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("user", string(owner)).Int("discarded", n).Msg("discarded active strokes")
	}
	return n
}

func (r *roomImpl) CompletedSnapshot() []*domain.Stroke {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strokes.CompletedSnapshot()
}

func (r *roomImpl) ActiveSnapshot() []*domain.Stroke {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strokes.ActiveSnapshot()
}
