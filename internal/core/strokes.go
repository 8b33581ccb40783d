package core

import (
	"errors"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

var (
	ErrStrokeNotFound = errors.New("stroke not found")
	ErrNotStrokeOwner = errors.New("not stroke owner")
)

// strokeTable tracks a room's strokes through absent → active → completed.
// A stroke id is in at most one of the two tables. Not safe for concurrent
// use; callers hold the room lock.
type strokeTable struct {
	active    map[domain.StrokeID]*domain.Stroke
	completed []*domain.Stroke
}

func newStrokeTable() *strokeTable {
	return &strokeTable{active: make(map[domain.StrokeID]*domain.Stroke)}
}

// Start registers a new active stroke. A duplicate id in either table is
// refused.
func (t *strokeTable) Start(s *domain.Stroke) bool {
	if _, ok := t.active[s.ID]; ok {
		return false
	}
	for _, c := range t.completed {
		if c.ID == s.ID {
			return false
		}
	}
	t.active[s.ID] = s
	return true
}

// Extend appends one point iff the stroke is active. A chunk arriving
// after end/disconnect must not resurrect the stroke.
func (t *strokeTable) Extend(id domain.StrokeID, p domain.Point) bool {
	s, ok := t.active[id]
	if !ok {
		return false
	}
	s.Append(p)
	return true
}

// Finish moves the stroke, by reference, from the active table to the
// tail of the completed log.
func (t *strokeTable) Finish(id domain.StrokeID) (*domain.Stroke, bool) {
	s, ok := t.active[id]
	if !ok {
		return nil, false
	}
	delete(t.active, id)
	t.completed = append(t.completed, s)
	return s, true
}

// Delete removes a completed stroke, only for its owner.
func (t *strokeTable) Delete(id domain.StrokeID, requester domain.UserID) error {
	for i, s := range t.completed {
		if s.ID != id {
			continue
		}
		if s.Owner != requester {
			return ErrNotStrokeOwner
		}
		t.completed = append(t.completed[:i], t.completed[i+1:]...)
		return nil
	}
	return ErrStrokeNotFound
}

// DiscardOwnedActive drops every active stroke owned by owner and reports
// how many were dropped. Abandoned strokes are never partially committed.
func (t *strokeTable) DiscardOwnedActive(owner domain.UserID) int {
	n := 0
	for id, s := range t.active {
		if s.Owner == owner {
			delete(t.active, id)
			n++
		}
	}
	return n
}

func (t *strokeTable) CompletedSnapshot() []*domain.Stroke {
	out := make([]*domain.Stroke, len(t.completed))
	copy(out, t.completed)
	return out
}

// ActiveSnapshot deep-copies the active strokes: their Points are still
// being appended to, so handing out the live objects would let readers
// race the owner once the room lock is released.
func (t *strokeTable) ActiveSnapshot() []*domain.Stroke {
	out := make([]*domain.Stroke, 0, len(t.active))
	for _, s := range t.active {
		out = append(out, s.Clone())
	}
	return out
}
