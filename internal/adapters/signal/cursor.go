package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

func (ctl *Controller) handleCursorMove(user *domain.User, data []byte) {
	if !ctl.cursorLimiter.Allow(user.ID) {
		return
	}

	type cursorPayload struct {
		Type string  `json:"type"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}
	var p cursorPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad cursor_move payload")
		return
	}
	ctl.Coord.CursorMove(user.ID, p.X, p.Y)
}
