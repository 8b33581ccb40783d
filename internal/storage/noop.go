package storage

import (
	"context"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

// NoopStore is used when no database is configured; the drawing state
// stays memory-only.
type NoopStore struct{}

func (NoopStore) Save(ctx context.Context, roomID domain.RoomID, strokes []*domain.Stroke) error {
	return nil
}

func (NoopStore) Close() {}
