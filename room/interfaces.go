package room

import (
	"time"

	"github.com/wfunc/cardauction/game"
)

// Observer receives side-channel notifications from a room worker. It is
// defined here so monitor, services and events can plug in without this
// package importing them.
type Observer interface {
	// RoomEvent fires for every broadcast game event.
	RoomEvent(roomID string, ev game.Event)
	// RoomFinished fires once when the game reaches its terminal stage,
	// with the final state.
	RoomFinished(roomID string, final *game.State)
	// ActionProcessed fires after every submitted action, accepted or not.
	ActionProcessed(roomID string, took time.Duration, rejected bool)
}
