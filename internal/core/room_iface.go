package core

import (
	"time"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

// PublishResult reports delivery stats/backpressure to the coordinator.
type PublishResult struct {
	SentTo  int
	Dropped []domain.UserID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}

// RoomSummary is the lobby-facing view of a room.
type RoomSummary struct {
	ID        domain.RoomID     `json:"id"`
	Name      domain.RoomName   `json:"name"`
	Size      domain.CanvasSize `json:"size"`
	Creator   domain.UserID     `json:"creator"`
	CreatedAt time.Time         `json:"createdAt"`
	UserCount int               `json:"userCount"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set and the stroke tables but never touches
// transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO

	AddMember(uid domain.UserID, ms MemberSession)
	RemoveMember(uid domain.UserID)
	Broadcast(from domain.UserID, data Frame) PublishResult

	StartStroke(id domain.StrokeID, owner domain.UserID, first domain.Point, color string, width float64) bool
	ExtendStroke(id domain.StrokeID, p domain.Point) bool
	FinishStroke(id domain.StrokeID) (*domain.Stroke, bool)
	DeleteStroke(id domain.StrokeID, requester domain.UserID) error
	DiscardActiveOwnedBy(owner domain.UserID) int

	CompletedSnapshot() []*domain.Stroke
	ActiveSnapshot() []*domain.Stroke
}

// RoomManager owns the room set and the deferred deletion of rooms that
// stay empty through the grace period.
type RoomManager interface {
	CreateRoom(name domain.RoomName, size domain.CanvasSize, creator domain.UserID) (RoomService, error)
	GetRoom(id domain.RoomID) (RoomService, bool)
	List() []RoomSummary

	StopRoom(id domain.RoomID)
	ScheduleReap(id domain.RoomID, onReap func(RoomService))
	CancelReap(id domain.RoomID)
}
