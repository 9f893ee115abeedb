package app

import "github.com/dkeye/peerchat/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a recipient whose outbound queue refused
// a broadcast frame. It never affects the sender.
type Policy interface {
	OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction
}

// SimplePolicy kicks slow consumers; a kicked connection runs its own
// disconnect cleanup.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction {
	return KickMember
}

// TolerantPolicy keeps slow consumers and lets them miss frames.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(core.RoomService, core.MemberSession) BackpressureAction {
	return NoAction
}
