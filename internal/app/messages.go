package app

import (
	"github.com/0dayMonkey/drawlima-back/internal/core"
	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

// Outbound message shapes. Every message carries its type in-band so a
// client can demultiplex a single stream.

type AuthenticatedMsg struct {
	Type        string             `json:"type"`
	UserID      domain.UserID      `json:"userId"`
	Token       string             `json:"token,omitempty"`
	Whiteboards []core.RoomSummary `json:"whiteboards"`
}

type RoomListMsg struct {
	Type        string             `json:"type"`
	Whiteboards []core.RoomSummary `json:"whiteboards"`
}

type JoinedRoomMsg struct {
	Type          string            `json:"type"`
	RoomID        domain.RoomID     `json:"roomId"`
	Name          domain.RoomName   `json:"name"`
	Size          domain.CanvasSize `json:"size"`
	Strokes       []*domain.Stroke  `json:"strokes"`
	ActiveStrokes []*domain.Stroke  `json:"activeStrokes"`
	Users         []core.MemberDTO  `json:"users"`
}

type UserJoinedMsg struct {
	Type string         `json:"type"`
	User core.MemberDTO `json:"user"`
}

type UserLeftMsg struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

// Relayed drawing events: same shape as the inbound messages, with the
// sender's id injected server-side.

type StrokeStartMsg struct {
	Type     string          `json:"type"`
	StrokeID domain.StrokeID `json:"strokeId"`
	OwnerID  domain.UserID   `json:"ownerId"`
	Point    domain.Point    `json:"point"`
	Color    string          `json:"color,omitempty"`
	Width    float64         `json:"width,omitempty"`
}

type DrawChunkMsg struct {
	Type     string          `json:"type"`
	StrokeID domain.StrokeID `json:"strokeId"`
	OwnerID  domain.UserID   `json:"ownerId"`
	Point    domain.Point    `json:"point"`
}

type StrokeEndMsg struct {
	Type     string          `json:"type"`
	StrokeID domain.StrokeID `json:"strokeId"`
	OwnerID  domain.UserID   `json:"ownerId"`
}

type StrokeDeleteMsg struct {
	Type     string          `json:"type"`
	StrokeID domain.StrokeID `json:"strokeId"`
	OwnerID  domain.UserID   `json:"ownerId"`
}

type CursorUpdateMsg struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
}
