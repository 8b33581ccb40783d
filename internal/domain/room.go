package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const MaxRoomNameLen = 64

var ErrRoomNameEmpty = errors.New("room name empty")

type (
	RoomName string
	RoomID   string
)

// CanvasSize is the drawing surface bounds, opaque to the server
// beyond being echoed to joining clients.
type CanvasSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Room struct {
	ID        RoomID     `json:"id"`
	Name      RoomName   `json:"name"`
	Size      CanvasSize `json:"size"`
	Creator   UserID     `json:"creator"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewRoom(name RoomName, size CanvasSize, creator UserID) (*Room, error) {
	if name == "" {
		return nil, ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		name = name[:MaxRoomNameLen]
	}
	return &Room{
		ID:        RoomID(uuid.NewString()),
		Name:      name,
		Size:      size,
		Creator:   creator,
		CreatedAt: time.Now(),
	}, nil
}
