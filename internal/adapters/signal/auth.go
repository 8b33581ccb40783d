package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/core"
)

func (ctl *Controller) handleAuth(sid core.SessionID, conn *WsConn, data []byte) {
	type authPayload struct {
		Type     string `json:"type"`
		Token    string `json:"token,omitempty"`
		Username string `json:"username"`
	}
	var p authPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad auth payload")
		return
	}

	if _, err := ctl.Coord.Authenticate(sid, conn, conn.cancel, p.Token, p.Username); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("authentication failed")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "auth_failed",
		})
	}
}
