package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

func (ctl *Controller) handleStartStroke(user *domain.User, data []byte) {
	type startPayload struct {
		Type     string       `json:"type"`
		StrokeID string       `json:"strokeId"`
		Point    domain.Point `json:"point"`
		Color    string       `json:"color,omitempty"`
		Width    float64      `json:"width,omitempty"`
	}
	var p startPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad start_stroke payload")
		return
	}
	if p.StrokeID == "" {
		return
	}
	ctl.Coord.StartStroke(user.ID, domain.StrokeID(p.StrokeID), p.Point, p.Color, p.Width)
}

func (ctl *Controller) handleDrawChunk(user *domain.User, data []byte) {
	type chunkPayload struct {
		Type     string       `json:"type"`
		StrokeID string       `json:"strokeId"`
		Point    domain.Point `json:"point"`
	}
	var p chunkPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad draw_chunk payload")
		return
	}
	ctl.Coord.ExtendStroke(user.ID, domain.StrokeID(p.StrokeID), p.Point)
}

func (ctl *Controller) handleEndStroke(user *domain.User, data []byte) {
	type endPayload struct {
		Type     string `json:"type"`
		StrokeID string `json:"strokeId"`
	}
	var p endPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad end_stroke payload")
		return
	}
	ctl.Coord.FinishStroke(user.ID, domain.StrokeID(p.StrokeID))
}

func (ctl *Controller) handleDeleteStroke(user *domain.User, data []byte) {
	type deletePayload struct {
		Type     string `json:"type"`
		StrokeID string `json:"strokeId"`
	}
	var p deletePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad delete_stroke payload")
		return
	}
	ctl.Coord.DeleteStroke(user.ID, domain.StrokeID(p.StrokeID))
}
