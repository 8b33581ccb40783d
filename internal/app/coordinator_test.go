package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/0dayMonkey/drawlima-back/internal/auth"
	"github.com/0dayMonkey/drawlima-back/internal/core"
	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

type fakeSaver struct {
	mu    sync.Mutex
	saves []int // completed-stroke count per Save call
}

func (f *fakeSaver) Save(ctx context.Context, roomID domain.RoomID, strokes []*domain.Stroke) error {
	f.mu.Lock()
	f.saves = append(f.saves, len(strokes))
	f.mu.Unlock()
	return nil
}

func (f *fakeSaver) Close() {}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func newTestCoordinator(grace time.Duration) (*Coordinator, *fakeSaver) {
	saver := &fakeSaver{}
	reg := NewRegistry(auth.NewTokenService("test-secret", time.Hour))
	return NewCoordinator(reg, core.NewRoomManager(grace), SimplePolicy{}, saver), saver
}

func connectUser(t *testing.T, c *Coordinator, sid core.SessionID, name string) (domain.UserID, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	res, err := c.Authenticate(sid, conn, func() {}, "", name)
	if err != nil {
		t.Fatalf("auth %s: %v", name, err)
	}
	return res.User.ID, conn
}

// lastOfType returns the most recent delivered message of the given type.
func lastOfType(t *testing.T, conn *fakeConn, typ string) (map[string]any, bool) {
	t.Helper()
	msgs := conn.messages(t)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i]["type"] == typ {
			return msgs[i], true
		}
	}
	return nil, false
}

func countOfType(t *testing.T, conn *fakeConn, typ string) int {
	t.Helper()
	n := 0
	for _, m := range conn.messages(t) {
		if m["type"] == typ {
			n++
		}
	}
	return n
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestCoordinator_Scenario(t *testing.T) {
	c, saver := newTestCoordinator(time.Minute)

	aID, aConn := connectUser(t, c, "sid-a", "alice")
	bID, bConn := connectUser(t, c, "sid-b", "bob")

	if m, ok := lastOfType(t, aConn, "authenticated"); !ok || m["userId"] != string(aID) {
		t.Fatal("alice never got authenticated reply")
	}

	// Alice creates "demo": auto-joined, lobby update for everyone.
	room, err := c.CreateRoom(aID, "demo", domain.CanvasSize{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if m, ok := lastOfType(t, aConn, "joined_room"); !ok || m["name"] != "demo" {
		t.Fatal("creator not auto-joined")
	}
	listMsg, ok := lastOfType(t, bConn, "room_list_update")
	if !ok {
		t.Fatal("lobby user missed room_list_update")
	}
	boards := listMsg["whiteboards"].([]any)
	if len(boards) != 1 || boards[0].(map[string]any)["userCount"].(float64) != 1 {
		t.Errorf("bad lobby listing: %+v", boards)
	}

	// Bob joins: empty snapshot for him, user_joined for alice.
	if !c.JoinRoom(bID, room.Room().ID) {
		t.Fatal("join refused")
	}
	joined, ok := lastOfType(t, bConn, "joined_room")
	if !ok {
		t.Fatal("bob missed his snapshot")
	}
	if strokes := joined["strokes"].([]any); len(strokes) != 0 {
		t.Errorf("expected empty stroke log, got %d", len(strokes))
	}
	if users := joined["users"].([]any); len(users) != 2 {
		t.Errorf("expected 2 users in snapshot, got %d", len(users))
	}
	if m, ok := lastOfType(t, aConn, "user_joined"); !ok || m["user"].(map[string]any)["id"] != string(bID) {
		t.Fatal("alice missed user_joined")
	}

	// Alice draws: start + 2 chunks + end. Bob sees all four relays.
	c.StartStroke(aID, "s1", domain.Point{X: 1, Y: 1}, "#000", 2)
	c.ExtendStroke(aID, "s1", domain.Point{X: 2, Y: 2})
	c.ExtendStroke(aID, "s1", domain.Point{X: 3, Y: 3})
	c.FinishStroke(aID, "s1")

	if n := countOfType(t, bConn, "start_stroke"); n != 1 {
		t.Errorf("bob saw %d start_stroke", n)
	}
	if n := countOfType(t, bConn, "draw_chunk"); n != 2 {
		t.Errorf("bob saw %d draw_chunk", n)
	}
	if n := countOfType(t, bConn, "end_stroke"); n != 1 {
		t.Errorf("bob saw %d end_stroke", n)
	}
	if m, _ := lastOfType(t, bConn, "start_stroke"); m["ownerId"] != string(aID) {
		t.Error("relayed stroke missing server-assigned owner")
	}
	if n := countOfType(t, aConn, "start_stroke"); n != 0 {
		t.Error("sender received its own relay")
	}

	completed := room.CompletedSnapshot()
	if len(completed) != 1 || len(completed[0].Points) != 3 || completed[0].Owner != aID {
		t.Fatalf("bad completed log: %+v", completed)
	}
	waitFor(t, func() bool { return saver.count() == 1 })

	// Bob tries to delete alice's stroke: refused, nothing broadcast.
	c.DeleteStroke(bID, "s1")
	if len(room.CompletedSnapshot()) != 1 {
		t.Fatal("non-owner delete mutated the log")
	}
	if n := countOfType(t, aConn, "delete_stroke"); n != 0 {
		t.Error("refused delete was broadcast")
	}

	// Alice deletes it: bob notified, log empty.
	c.DeleteStroke(aID, "s1")
	if len(room.CompletedSnapshot()) != 0 {
		t.Fatal("owner delete did not remove the stroke")
	}
	if n := countOfType(t, bConn, "delete_stroke"); n != 1 {
		t.Error("bob missed the deletion")
	}
	waitFor(t, func() bool { return saver.count() == 2 })
}

func TestCoordinator_DisconnectDiscardsActiveStrokes(t *testing.T) {
	c, _ := newTestCoordinator(time.Minute)
	aID, aConn := connectUser(t, c, "sid-a", "alice")
	bID, bConn := connectUser(t, c, "sid-b", "bob")

	room, _ := c.CreateRoom(aID, "demo", domain.CanvasSize{})
	c.JoinRoom(bID, room.Room().ID)

	c.StartStroke(aID, "s1", domain.Point{}, "", 0)
	c.StartStroke(aID, "s2", domain.Point{}, "", 0)
	c.StartStroke(aID, "s3", domain.Point{}, "", 0)

	c.Disconnect("sid-a", aConn)

	if n := len(room.ActiveSnapshot()); n != 0 {
		t.Errorf("%d active strokes survived their owner's disconnect", n)
	}
	if n := countOfType(t, bConn, "end_stroke"); n != 0 {
		t.Error("abandoned strokes were finalized")
	}
	if m, ok := lastOfType(t, bConn, "user_left"); !ok || m["userId"] != string(aID) {
		t.Error("bob missed user_left")
	}
	if _, ok := c.Registry.SessionOf(aID); ok {
		t.Error("user record survived disconnect")
	}
}

func TestCoordinator_LeaveBeforeJoin(t *testing.T) {
	c, _ := newTestCoordinator(time.Minute)
	aID, _ := connectUser(t, c, "sid-a", "alice")
	bID, bConn := connectUser(t, c, "sid-b", "bob")

	first, _ := c.CreateRoom(aID, "first", domain.CanvasSize{})
	c.JoinRoom(bID, first.Room().ID)

	second, _ := c.CreateRoom(aID, "second", domain.CanvasSize{})

	if first.MemberCount() != 1 {
		t.Error("alice still a member of the old room")
	}
	if second.MemberCount() != 1 {
		t.Error("alice not in the new room")
	}
	if m, ok := lastOfType(t, bConn, "user_left"); !ok || m["userId"] != string(aID) {
		t.Error("old room not told about the switch")
	}
}

func TestCoordinator_RoomGrace(t *testing.T) {
	t.Run("room empty through the grace period is deleted and lobby updated", func(t *testing.T) {
		c, _ := newTestCoordinator(20 * time.Millisecond)
		aID, aConn := connectUser(t, c, "sid-a", "alice")
		room, _ := c.CreateRoom(aID, "demo", domain.CanvasSize{})
		id := room.Room().ID

		before := countOfType(t, aConn, "room_list_update")
		c.LeaveRoom(aID)

		waitFor(t, func() bool {
			_, ok := c.Rooms.GetRoom(id)
			return !ok
		})
		waitFor(t, func() bool { return countOfType(t, aConn, "room_list_update") > before })
	})

	t.Run("rejoin during the grace period keeps the room", func(t *testing.T) {
		c, _ := newTestCoordinator(40 * time.Millisecond)
		aID, _ := connectUser(t, c, "sid-a", "alice")
		room, _ := c.CreateRoom(aID, "demo", domain.CanvasSize{})
		id := room.Room().ID

		c.LeaveRoom(aID)
		c.JoinRoom(aID, id)

		time.Sleep(100 * time.Millisecond)
		if _, ok := c.Rooms.GetRoom(id); !ok {
			t.Error("room deleted despite rejoin before expiry")
		}
	})
}

func TestCoordinator_CursorRelay(t *testing.T) {
	c, _ := newTestCoordinator(time.Minute)
	aID, aConn := connectUser(t, c, "sid-a", "alice")
	bID, bConn := connectUser(t, c, "sid-b", "bob")

	room, _ := c.CreateRoom(aID, "demo", domain.CanvasSize{})
	c.JoinRoom(bID, room.Room().ID)

	c.CursorMove(aID, 10, 20)

	m, ok := lastOfType(t, bConn, "cursor_update")
	if !ok {
		t.Fatal("bob missed cursor_update")
	}
	if m["userId"] != string(aID) || m["username"] != "alice" || m["x"].(float64) != 10 {
		t.Errorf("bad cursor relay: %+v", m)
	}
	if n := countOfType(t, aConn, "cursor_update"); n != 0 {
		t.Error("sender received its own cursor")
	}
}

func TestCoordinator_BackpressureKicksSlowMember(t *testing.T) {
	c, _ := newTestCoordinator(time.Minute)
	aID, _ := connectUser(t, c, "sid-a", "alice")
	bID, bConn := connectUser(t, c, "sid-b", "bob")

	room, _ := c.CreateRoom(aID, "demo", domain.CanvasSize{})
	c.JoinRoom(bID, room.Room().ID)

	bConn.mu.Lock()
	bConn.full = true
	bConn.mu.Unlock()

	c.CursorMove(aID, 1, 1)

	if !bConn.isClosed() {
		t.Error("slow member connection not closed")
	}
}

func TestCoordinator_UnauthedAndUnknownTargets(t *testing.T) {
	c, _ := newTestCoordinator(time.Minute)
	aID, _ := connectUser(t, c, "sid-a", "alice")

	t.Run("join of unknown room is dropped", func(t *testing.T) {
		if c.JoinRoom(aID, "ghost") {
			t.Error("join of unknown room succeeded")
		}
	})

	t.Run("draw outside a room is dropped", func(t *testing.T) {
		c.StartStroke(aID, "s1", domain.Point{}, "", 0) // no panic, no state
		c.ExtendStroke(aID, "s1", domain.Point{})
		c.FinishStroke(aID, "s1")
	})

	t.Run("disconnect of unknown sid is a no-op", func(t *testing.T) {
		c.Disconnect("never-seen", &fakeConn{})
	})
}

func TestCoordinator_SameSidReconnectKeepsMembership(t *testing.T) {
	// Both sockets of a same-browser reconnect carry the same session id;
	// the replaced one dying afterwards must not evict the live user.
	c, _ := newTestCoordinator(time.Minute)

	oldConn := &fakeConn{}
	first, err := c.Authenticate("cookie-a", oldConn, func() {}, "", "alice")
	if err != nil {
		t.Fatalf("first auth: %v", err)
	}
	aID := first.User.ID
	room, _ := c.CreateRoom(aID, "demo", domain.CanvasSize{})

	newConn := &fakeConn{}
	if _, err := c.Authenticate("cookie-a", newConn, func() {}, first.Token, "alice"); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if !oldConn.isClosed() {
		t.Error("replaced connection not terminated")
	}

	c.Disconnect("cookie-a", oldConn)

	if _, ok := c.Registry.SessionOf(aID); !ok {
		t.Fatal("live user record destroyed by the stale connection's death")
	}
	if roomID, ok := c.Registry.RoomOf(aID); !ok || roomID != room.Room().ID {
		t.Error("room membership lost")
	}
	if n := room.MemberCount(); n != 1 {
		t.Errorf("room member count = %d after stale disconnect, want 1", n)
	}

	// The live socket going away still cleans up normally.
	c.Disconnect("cookie-a", newConn)
	if _, ok := c.Registry.SessionOf(aID); ok {
		t.Error("user record survived its live connection's disconnect")
	}
	if n := room.MemberCount(); n != 0 {
		t.Errorf("room member count = %d after live disconnect, want 0", n)
	}
}
