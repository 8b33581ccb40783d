// Package storage provides the optional durable sink for completed
// stroke snapshots. The relay core works entirely in memory; this only
// captures finished drawings for later retrieval.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Str("module", "storage.postgres").Msg("connected to database")
	return &PostgresStore{pool: pool}, nil
}

// Save upserts the room's full completed-stroke log as one JSON document.
// Last write wins; the in-memory room is the authority.
func (s *PostgresStore) Save(ctx context.Context, roomID domain.RoomID, strokes []*domain.Stroke) error {
	data, err := json.Marshal(strokes)
	if err != nil {
		return fmt.Errorf("failed to marshal strokes: %w", err)
	}

	query := `
		INSERT INTO whiteboard_snapshots (room_id, strokes, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (room_id) DO UPDATE SET strokes = $2, updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, string(roomID), data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
