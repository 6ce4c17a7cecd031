package broadcast

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/cardauction/game"
	"github.com/wfunc/cardauction/network"
)

// Kind enumerates the outbound ServerMessage union.
type Kind int

const (
	KindStateUpdate Kind = iota
	KindGameEvent
	KindStringMessage
	KindDisconnect
	KindGameStop
)

// ServerMessage is one outbound message before per-recipient encoding.
// State carries the shared, unmasked snapshot; masking happens in Encode so
// every recipient gets their own projection.
type ServerMessage struct {
	Kind  Kind
	State *game.State
	Event *game.Event
	Text  string
}

// Envelope addresses a ServerMessage. Target nil means every subscriber.
type Envelope struct {
	Target *game.PlayerID
	Msg    ServerMessage
}

// For reports whether the envelope should be delivered to viewer.
func (e Envelope) For(viewer game.PlayerID) bool {
	return e.Target == nil || *e.Target == viewer
}

// Encode serializes a ServerMessage into a frame for one recipient. State
// updates are masked for that viewer; all other kinds are viewer-independent.
func Encode(msg ServerMessage, viewer game.PlayerID) (msgID uint16, data []byte, err error) {
	switch msg.Kind {
	case KindStateUpdate:
		data, err = json.Marshal(game.Mask(msg.State, viewer))
		return network.MsgTypeStateUpdate, data, err
	case KindGameEvent:
		data, err = json.Marshal(msg.Event)
		return network.MsgTypeGameEvent, data, err
	case KindStringMessage:
		data, err = json.Marshal(msg.Text)
		return network.MsgTypeStringMessage, data, err
	case KindDisconnect:
		return network.MsgTypeDisconnect, nil, nil
	case KindGameStop:
		return network.MsgTypeGameStop, nil, nil
	}
	return 0, nil, fmt.Errorf("unknown message kind %d", msg.Kind)
}

// StateUpdate wraps a snapshot for broadcast or for a single requester.
func StateUpdate(target *game.PlayerID, snapshot *game.State) Envelope {
	return Envelope{Target: target, Msg: ServerMessage{Kind: KindStateUpdate, State: snapshot}}
}

// EventMessage wraps a game event for everyone.
func EventMessage(ev game.Event) Envelope {
	e := ev
	return Envelope{Msg: ServerMessage{Kind: KindGameEvent, Event: &e}}
}

// Rejection wraps an action rejection for the originator only.
func Rejection(target game.PlayerID, text string) Envelope {
	t := target
	return Envelope{Target: &t, Msg: ServerMessage{Kind: KindStringMessage, Text: text}}
}

// GameStop announces room teardown to everyone.
func GameStop() Envelope {
	return Envelope{Msg: ServerMessage{Kind: KindGameStop}}
}
