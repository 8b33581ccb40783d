package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
	closed bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return ErrTestBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

var ErrTestBackpressure = errors.New("send buffer full")

func newTestRoom(t *testing.T) RoomService {
	t.Helper()
	room, err := domain.NewRoom("demo", domain.CanvasSize{Width: 800, Height: 600}, "creator")
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}
	return NewRoomService(room)
}

func addMember(r RoomService, id domain.UserID) *fakeConn {
	conn := &fakeConn{}
	user := &domain.User{ID: id, Username: string(id)}
	r.AddMember(id, NewMemberSession(user).UpdateSignal(conn))
	return conn
}

func TestRoom_Broadcast(t *testing.T) {
	t.Run("excludes the sender and reaches everyone else once", func(t *testing.T) {
		r := newTestRoom(t)
		a := addMember(r, "a")
		b := addMember(r, "b")
		c := addMember(r, "c")

		res := r.Broadcast("a", Frame(`{"type":"x"}`))
		if res.SentTo != 2 {
			t.Errorf("expected 2 deliveries, got %d", res.SentTo)
		}
		if a.count() != 0 {
			t.Error("sender received its own broadcast")
		}
		if b.count() != 1 || c.count() != 1 {
			t.Errorf("uneven delivery: b=%d c=%d", b.count(), c.count())
		}
	})

	t.Run("slow member is reported dropped, others still delivered", func(t *testing.T) {
		r := newTestRoom(t)
		addMember(r, "a")
		b := addMember(r, "b")
		slow := addMember(r, "slow")
		slow.full = true

		res := r.Broadcast("a", Frame(`{}`))
		if res.SentTo != 1 || b.count() != 1 {
			t.Errorf("healthy member missed delivery: sent=%d", res.SentTo)
		}
		if len(res.Dropped) != 1 || res.Dropped[0] != "slow" {
			t.Errorf("expected slow dropped, got %v", res.Dropped)
		}
	})

	t.Run("removed member no longer receives", func(t *testing.T) {
		r := newTestRoom(t)
		addMember(r, "a")
		b := addMember(r, "b")
		r.RemoveMember("b")

		r.Broadcast("a", Frame(`{}`))
		if b.count() != 0 {
			t.Error("removed member received broadcast")
		}
		if r.MemberCount() != 1 {
			t.Errorf("member count = %d", r.MemberCount())
		}
	})
}

func TestRoom_MembersSnapshot(t *testing.T) {
	r := newTestRoom(t)
	addMember(r, "a")
	addMember(r, "b")

	snap := r.MembersSnapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 members, got %d", len(snap))
	}
	seen := map[domain.UserID]bool{}
	for _, m := range snap {
		seen[m.ID] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("snapshot incomplete: %+v", snap)
	}
}

func TestMemberSession_Rename(t *testing.T) {
	// A reconnect may rename the session while rooms read the name for
	// snapshots and relays; the entity keeps its minted name.
	user := &domain.User{ID: "u1", Username: "alice"}
	sess := NewMemberSession(user)
	if sess.Username() != "alice" {
		t.Fatalf("initial username = %q", sess.Username())
	}

	sess.SetUsername("alice2")
	if sess.Username() != "alice2" {
		t.Error("rename not visible through the session")
	}
	if user.Username != "alice" {
		t.Error("rename leaked into the user entity")
	}

	r := newTestRoom(t)
	r.AddMember("u1", sess)
	snap := r.MembersSnapshot()
	if len(snap) != 1 || snap[0].Username != "alice2" {
		t.Errorf("snapshot did not pick up the rename: %+v", snap)
	}
}

func TestRoom_StrokeOwnership(t *testing.T) {
	r := newTestRoom(t)
	addMember(r, "alice")
	addMember(r, "bob")

	if !r.StartStroke("s1", "alice", domain.Point{X: 1}, "#fff", 1) {
		t.Fatal("start refused")
	}
	r.ExtendStroke("s1", domain.Point{X: 2})
	if _, ok := r.FinishStroke("s1"); !ok {
		t.Fatal("finish refused")
	}

	if err := r.DeleteStroke("s1", "bob"); err == nil {
		t.Error("non-owner delete succeeded")
	}
	if len(r.CompletedSnapshot()) != 1 {
		t.Fatal("stroke vanished after refused delete")
	}
	if err := r.DeleteStroke("s1", "alice"); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}
