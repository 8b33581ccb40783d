package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/0dayMonkey/drawlima-back/internal/adapters/http"
	"github.com/0dayMonkey/drawlima-back/internal/app"
	"github.com/0dayMonkey/drawlima-back/internal/auth"
	"github.com/0dayMonkey/drawlima-back/internal/config"
	"github.com/0dayMonkey/drawlima-back/internal/core"
	"github.com/0dayMonkey/drawlima-back/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var saver core.SnapshotSaver = storage.NoopStore{}
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("snapshot store unavailable, staying memory-only")
		} else {
			saver = pg
			defer pg.Close()
		}
	}

	tokens := auth.NewTokenService(cfg.Secret, cfg.TokenTTL)
	registry := app.NewRegistry(tokens)
	rooms := core.NewRoomManager(cfg.RoomGrace)
	coord := app.NewCoordinator(registry, rooms, app.SimplePolicy{}, saver)

	r := router.SetupRouter(ctx, cfg, coord)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("drawlima server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
