package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/cardauction/broadcast"
	"github.com/wfunc/cardauction/game"
	"github.com/wfunc/cardauction/logger"
	"github.com/wfunc/cardauction/monitor"
	"github.com/wfunc/cardauction/network"
	"github.com/wfunc/cardauction/room"
	auctionrpc "github.com/wfunc/cardauction/rpc"
	"github.com/wfunc/cardauction/services"
	"github.com/wfunc/cardauction/session"
	"github.com/wfunc/cardauction/timer"
)

const heartbeatInterval = 30 * time.Second

// Options wires the collaborators a GameServer needs. Monitor and Publisher
// may be nil.
type Options struct {
	HTTPAddress string
	RPCAddress  string
	GameOptions game.Options
	IdleRoomTTL time.Duration
	Records     *services.RecordService
	Monitor     *monitor.Monitor
	Publisher   room.Observer
}

type GameServer struct {
	opts     Options
	upgrader websocket.Upgrader
	rooms    *room.Manager
	sessions *session.Manager
	records  *services.RecordService
	monitor  *monitor.Monitor
	observer room.Observer
	rpcSrv   *auctionrpc.Server
	timers   *timer.Manager
}

func NewGameServer(opts Options) (*GameServer, error) {
	if opts.Records == nil {
		opts.Records = services.NewRecordService(nil)
	}

	s := &GameServer{
		opts:     opts,
		rooms:    room.NewManager(),
		sessions: session.NewManager(),
		records:  opts.Records,
		monitor:  opts.Monitor,
		timers:   timer.NewManager(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	observers := []room.Observer{s.records}
	if opts.Monitor != nil {
		observers = append(observers, opts.Monitor)
	}
	if opts.Publisher != nil {
		observers = append(observers, opts.Publisher)
	}
	s.observer = multiObserver(observers)

	rpcSrv, err := auctionrpc.NewServer(opts.RPCAddress)
	if err != nil {
		return nil, err
	}
	s.rpcSrv = rpcSrv
	rpc.Register(auctionrpc.NewAdminService(s.rooms, s.records))

	if opts.IdleRoomTTL > 0 {
		s.timers.Schedule(time.Minute, time.Minute, func() {
			if swept := s.rooms.SweepIdle(opts.IdleRoomTTL); len(swept) > 0 {
				s.syncRoomGauge()
			}
		})
	}

	return s, nil
}

func (s *GameServer) Start() error {
	go s.rpcSrv.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /rooms", s.handleCreateRoom)
	mux.HandleFunc("DELETE /rooms/{room}", s.handleStopRoom)
	mux.HandleFunc("GET /ws/{room}/{uuid}", s.handleWebSocket)

	logger.Log.Infof("Game server listening on %s", s.opts.HTTPAddress)
	return http.ListenAndServe(s.opts.HTTPAddress, mux)
}

func (s *GameServer) Shutdown() {
	s.rpcSrv.Stop()
	s.timers.Stop()
	for _, id := range s.rooms.IDs() {
		s.rooms.Remove(id)
	}
}

type createRoomRequest struct {
	RoomID       string   `json:"room_id"`
	PlayerNames  []string `json:"players"`
	InitialMoney int      `json:"initial_money"`
}

type createRoomResponse struct {
	RoomID  string             `json:"room_id"`
	Players []game.RosterEntry `json:"players"`
}

// handleCreateRoom registers a roster and starts the game. Player uuids are
// generated here and handed back to the caller for distribution; they are
// the connection credentials.
func (s *GameServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.RoomID == "" {
		req.RoomID = uuid.New().String()
	}
	roster := make([]game.RosterEntry, len(req.PlayerNames))
	for i, name := range req.PlayerNames {
		roster[i] = game.RosterEntry{UUID: uuid.New().String(), Name: name}
	}

	opts := s.opts.GameOptions
	if req.InitialMoney > 0 {
		opts.InitialMoney = req.InitialMoney
	}

	if _, err := s.rooms.Create(req.RoomID, roster, opts, s.observer); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, room.ErrDuplicateID) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.records.GameStarted(req.RoomID)
	s.syncRoomGauge()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(createRoomResponse{RoomID: req.RoomID, Players: roster})
}

func (s *GameServer) handleStopRoom(w http.ResponseWriter, r *http.Request) {
	if !s.rooms.Remove(r.PathValue("room")) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	s.syncRoomGauge()
	w.WriteHeader(http.StatusNoContent)
}

// handleWebSocket authorizes the (roomId, playerUuid) pair and hands the
// connection to the session pumps. Unknown room or uuid refuses the upgrade.
func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")
	playerUUID := r.PathValue("uuid")

	rm, ok := s.rooms.Get(roomID)
	if !ok {
		http.Error(w, "invalid room id", http.StatusNotFound)
		return
	}
	playerID, err := rm.PlayerByUUID(playerUUID)
	if err != nil {
		http.Error(w, "you are not a participant of this game", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.serveSession(rm, playerID, playerUUID, network.NewWSConnection(conn))
}

// serveSession runs the session's reader pump on the calling goroutine and a
// writer pump beside it. Whichever exits first drags the other down, then a
// best-effort Disconnect is queued so shared state reflects the departure.
func (s *GameServer) serveSession(rm *room.Room, playerID game.PlayerID, playerUUID string, conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn, rm.ID, playerID, playerUUID)
	s.sessions.Add(sess)
	conn.SetHeartbeat(heartbeatInterval)
	if s.monitor != nil {
		s.monitor.IncOnlinePlayers()
	}
	logger.Log.Infof("room %s: player %d connected from %s", rm.ID, playerID, conn.RemoteAddr())

	sub, cancel, err := rm.Subscribe(playerID)
	if err != nil {
		s.sessions.Remove(sess.GetID())
		if s.monitor != nil {
			s.monitor.DecOnlinePlayers()
		}
		conn.Close()
		return
	}

	defer func() {
		cancel()
		rm.Submit(room.Input{Player: playerID, Kind: room.InputDisconnect})
		s.sessions.Remove(sess.GetID())
		if s.monitor != nil {
			s.monitor.DecOnlinePlayers()
		}
		conn.Close()
		logger.Log.Infof("room %s: player %d disconnected", rm.ID, playerID)
	}()

	// Writer pump: each recipient masks its own copy at encode time.
	go func() {
		defer conn.Close()
		for env := range sub {
			msgID, data, err := broadcast.Encode(env.Msg, playerID)
			if err != nil {
				logger.Log.Errorf("room %s: encode failed: %v", rm.ID, err)
				continue
			}
			if err := sess.Send(msgID, data); err != nil {
				return
			}
		}
	}()

	rm.Submit(room.Input{Player: playerID, Kind: room.InputConnect})

	for {
		packet, err := conn.ReadPacket()
		if err != nil {
			if errors.Is(err, network.ErrShortFrame) {
				continue // malformed frame; keep the connection
			}
			return
		}
		sess.Touch()
		s.handlePacket(rm, playerID, packet)
	}
}

func (s *GameServer) handlePacket(rm *room.Room, playerID game.PlayerID, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		// Touch already recorded it.
	case network.MsgTypeRequestState:
		rm.Submit(room.Input{Player: playerID, Kind: room.InputRequestState})
	case network.MsgTypeAction:
		var in game.ActionInput
		if err := json.Unmarshal(packet.Data, &in); err != nil {
			logger.Log.Debugf("room %s: dropping unparseable action from player %d", rm.ID, playerID)
			return
		}
		rm.Submit(room.Input{Player: playerID, Kind: room.InputAction, Action: in})
	default:
		logger.Log.Debugf("room %s: unknown message type %d", rm.ID, packet.MsgID)
	}
}

func (s *GameServer) syncRoomGauge() {
	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.rooms.Count())
	}
}

// multiObserver fans observer callbacks out to every collaborator.
type multiObserver []room.Observer

func (m multiObserver) RoomEvent(roomID string, ev game.Event) {
	for _, o := range m {
		o.RoomEvent(roomID, ev)
	}
}

func (m multiObserver) RoomFinished(roomID string, final *game.State) {
	for _, o := range m {
		o.RoomFinished(roomID, final)
	}
}

func (m multiObserver) ActionProcessed(roomID string, took time.Duration, rejected bool) {
	for _, o := range m {
		o.ActionProcessed(roomID, took, rejected)
	}
}
