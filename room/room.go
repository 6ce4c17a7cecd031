// room/room.go
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/cardauction/broadcast"
	"github.com/wfunc/cardauction/game"
	"github.com/wfunc/cardauction/logger"
)

var (
	ErrRoomStopped  = errors.New("room has stopped")
	ErrUnknownUUID  = errors.New("uuid is not a participant of this room")
	ErrDuplicateID  = errors.New("room id already in use")
	ErrRoomNotFound = errors.New("room not found")
)

// InputKind discriminates the GameInput union a room consumes.
type InputKind int

const (
	InputAction InputKind = iota
	InputRequestState
	InputConnect
	InputDisconnect
	inputStop
)

// Input is one queued submission, tagged with the player it came from.
type Input struct {
	Player game.PlayerID
	Kind   InputKind
	Action game.ActionInput
}

// subscriberBuffer is per-session; a slow session drops messages rather than
// stalling the room worker.
const subscriberBuffer = 32

type subscriber struct {
	player game.PlayerID
	ch     chan broadcast.Envelope
}

// Room 是一局游戏: 固定的玩家名单 + 唯一持有 GameState 的 worker.
// All mutation goes through the inputs queue; the worker goroutine is the
// only code that ever touches the state.
type Room struct {
	ID     string
	Roster []game.RosterEntry

	state    *game.State
	inputs   chan Input
	done     chan struct{}
	stopOnce sync.Once
	observer Observer

	subMutex  sync.Mutex
	subs      map[int]*subscriber
	nextSubID int

	idleMutex sync.Mutex
	idleSince time.Time
	createdAt time.Time
}

// New deals a fresh game for the roster and starts the room worker.
func New(id string, roster []game.RosterEntry, opts game.Options, observer Observer) (*Room, error) {
	state, err := game.NewState(roster, opts)
	if err != nil {
		return nil, err
	}

	r := &Room{
		ID:        id,
		Roster:    roster,
		state:     state,
		inputs:    make(chan Input, 64),
		done:      make(chan struct{}),
		observer:  observer,
		subs:      make(map[int]*subscriber),
		idleSince: time.Now(),
		createdAt: time.Now(),
	}
	go r.worker()
	return r, nil
}

// PlayerByUUID resolves a pre-registered participant.
func (r *Room) PlayerByUUID(uuid string) (game.PlayerID, error) {
	for i, entry := range r.Roster {
		if entry.UUID == uuid {
			return i, nil
		}
	}
	return 0, ErrUnknownUUID
}

// Submit queues one input for the worker. Inputs from any number of sessions
// are applied strictly in queue order, never concurrently.
func (r *Room) Submit(in Input) error {
	select {
	case <-r.done:
		return ErrRoomStopped
	case r.inputs <- in:
		return nil
	}
}

// Subscribe registers an outbound channel for one player's session. The
// returned cancel must be called when the session goes away; the channel is
// closed either by cancel or by room teardown.
func (r *Room) Subscribe(player game.PlayerID) (<-chan broadcast.Envelope, func(), error) {
	r.subMutex.Lock()
	defer r.subMutex.Unlock()

	select {
	case <-r.done:
		return nil, nil, ErrRoomStopped
	default:
	}

	id := r.nextSubID
	r.nextSubID++
	sub := &subscriber{player: player, ch: make(chan broadcast.Envelope, subscriberBuffer)}
	r.subs[id] = sub

	cancel := func() {
		r.subMutex.Lock()
		defer r.subMutex.Unlock()
		if s, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, cancel, nil
}

// Stop force-stops the room: subscribers get a GameStop and the worker exits.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		select {
		case r.inputs <- Input{Kind: inputStop}:
		case <-r.done:
		}
	})
}

// Done is closed once the worker has exited.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// IdleSince returns the time all players became disconnected, or zero time
// while anyone is still connected.
func (r *Room) IdleSince() time.Time {
	r.idleMutex.Lock()
	defer r.idleMutex.Unlock()
	return r.idleSince
}

func (r *Room) setIdle(idle bool) {
	r.idleMutex.Lock()
	defer r.idleMutex.Unlock()
	if idle {
		if r.idleSince.IsZero() {
			r.idleSince = time.Now()
		}
	} else {
		r.idleSince = time.Time{}
	}
}

// worker 是房间的唯一状态所有者.
func (r *Room) worker() {
	defer r.teardown()

	for in := range r.inputs {
		switch in.Kind {
		case inputStop:
			return
		case InputConnect:
			if !r.state.Players[in.Player].Connected {
				r.state.Players[in.Player].Connected = true
				r.setIdle(r.allDisconnected())
				r.emitEvent(game.ConnectEvent(in.Player))
			}
		case InputDisconnect:
			if r.state.Players[in.Player].Connected {
				r.state.Players[in.Player].Connected = false
				r.setIdle(r.allDisconnected())
				r.emitEvent(game.DisconnectEvent(in.Player))
			}
		case InputRequestState:
			r.publish(broadcast.StateUpdate(&in.Player, r.state.Clone()))
		case InputAction:
			start := time.Now()
			events, err := r.state.Apply(in.Player, in.Action)
			if r.observer != nil {
				r.observer.ActionProcessed(r.ID, time.Since(start), err != nil)
			}
			if err != nil {
				r.publish(broadcast.Rejection(in.Player, err.Error()))
				continue
			}
			r.publish(broadcast.StateUpdate(nil, r.state.Clone()))
			for _, ev := range events {
				r.emitEvent(ev)
			}
			if _, over := r.state.Stage.(game.GameOver); over {
				logger.Log.Infof("room %s: game over after %d rounds", r.ID, r.state.CurrentRound)
				if r.observer != nil {
					r.observer.RoomFinished(r.ID, r.state.Clone())
				}
				return
			}
		}
	}
}

func (r *Room) allDisconnected() bool {
	for _, p := range r.state.Players {
		if p.Connected {
			return false
		}
	}
	return true
}

func (r *Room) emitEvent(ev game.Event) {
	r.publish(broadcast.EventMessage(ev))
	if r.observer != nil {
		r.observer.RoomEvent(r.ID, ev)
	}
}

// publish fans an envelope out to the matching subscribers. A full
// subscriber buffer drops the message for that session only.
func (r *Room) publish(env broadcast.Envelope) {
	r.subMutex.Lock()
	defer r.subMutex.Unlock()
	for _, sub := range r.subs {
		if !env.For(sub.player) {
			continue
		}
		select {
		case sub.ch <- env:
		default:
			logger.Log.Warnf("room %s: dropping message for slow subscriber (player %d)", r.ID, sub.player)
		}
	}
}

func (r *Room) teardown() {
	r.publish(broadcast.GameStop())
	close(r.done)

	r.subMutex.Lock()
	defer r.subMutex.Unlock()
	for id, sub := range r.subs {
		delete(r.subs, id)
		close(sub.ch)
	}
}

// --- 房间管理器 ---

// Manager owns the room registry. Rooms are fully independent of each other.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{rooms: make(map[string]*Room)}
}

// Create registers a roster under a room id and starts the game.
func (m *Manager) Create(id string, roster []game.RosterEntry, opts game.Options, observer Observer) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if existing, ok := m.rooms[id]; ok {
		select {
		case <-existing.Done():
			// A finished room may be replaced.
		default:
			return nil, ErrDuplicateID
		}
	}

	room, err := New(id, roster, opts, observer)
	if err != nil {
		return nil, err
	}
	m.rooms[id] = room
	logger.Log.Infof("room %s: created with %d players", id, len(roster))
	return room, nil
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

// Remove force-stops and evicts a room.
func (m *Manager) Remove(id string) bool {
	m.mutex.Lock()
	room, ok := m.rooms[id]
	if ok {
		delete(m.rooms, id)
	}
	m.mutex.Unlock()

	if ok {
		room.Stop()
	}
	return ok
}

// Count returns the number of registered rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// IDs lists the registered room ids.
func (m *Manager) IDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	return ids
}

// SweepIdle stops rooms whose players have all been gone for longer than
// ttl, plus rooms whose worker already exited. Returns the ids swept.
func (m *Manager) SweepIdle(ttl time.Duration) []string {
	m.mutex.RLock()
	var expired []string
	for id, room := range m.rooms {
		select {
		case <-room.Done():
			expired = append(expired, id)
			continue
		default:
		}
		if since := room.IdleSince(); !since.IsZero() && time.Since(since) > ttl {
			expired = append(expired, id)
		}
	}
	m.mutex.RUnlock()

	for _, id := range expired {
		logger.Log.Infof("room %s: swept after idle timeout", id)
		m.Remove(id)
	}
	return expired
}
