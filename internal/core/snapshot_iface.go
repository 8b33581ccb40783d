package core

import (
	"context"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

// SnapshotSaver is an optional durable sink for a room's completed
// strokes. Calls are fire-and-forget; a failed save never surfaces to
// clients.
type SnapshotSaver interface {
	Save(ctx context.Context, roomID domain.RoomID, strokes []*domain.Stroke) error
	Close()
}
