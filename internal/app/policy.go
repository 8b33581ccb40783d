package app

import (
	"github.com/0dayMonkey/drawlima-back/internal/core"
	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send buffer overflowed
// during a fan-out.
type Policy interface {
	OnBackPressure(room core.RoomService, uid domain.UserID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.RoomService, uid domain.UserID) BackpressureAction {
	return KickMember
}
