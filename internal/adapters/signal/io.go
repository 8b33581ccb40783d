package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/core"
)

const (
	writeWait = 5 * time.Second
	pongWait  = 60 * time.Second
)

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid core.SessionID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		if user, ok := ctl.Coord.Registry.UserBySID(sid); ok {
			ctl.cursorLimiter.Forget(user.ID)
		}
		ctl.Coord.Disconnect(sid, c)
		c.cancel()
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleMessage(sid, c, data)
		}
	}
}

func (ctl *Controller) handleMessage(sid core.SessionID, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "auth":
		ctl.handleAuth(sid, c, data)
		return
	case "ping":
		ctl.handlePing(c)
		return
	}

	// Everything below requires an established identity; anything sent
	// before auth is dropped with no other side effect.
	user, ok := ctl.Coord.Registry.UserBySID(sid)
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("message before auth dropped")
		return
	}

	switch env.Type {
	case "create_room":
		ctl.handleCreateRoom(user, c, data)
	case "join_room":
		ctl.handleJoinRoom(user, c, data)
	case "leave_room":
		ctl.handleLeaveRoom(user, c)
	case "start_stroke":
		ctl.handleStartStroke(user, data)
	case "draw_chunk":
		ctl.handleDrawChunk(user, data)
	case "end_stroke":
		ctl.handleEndStroke(user, data)
	case "delete_stroke":
		ctl.handleDeleteStroke(user, data)
	case "cursor_move":
		ctl.handleCursorMove(user, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown message type")
	}
}

func (ctl *Controller) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
