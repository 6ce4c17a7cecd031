package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/cardauction/logger"
	"github.com/wfunc/cardauction/models"
	"github.com/wfunc/cardauction/room"
	"github.com/wfunc/cardauction/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational controls over net/rpc: room teardown,
// room listing and cross-game player stats.
type AdminService struct {
	rooms   *room.Manager
	records *services.RecordService
}

func NewAdminService(rooms *room.Manager, records *services.RecordService) *AdminService {
	return &AdminService{rooms: rooms, records: records}
}

type ForceStopArgs struct {
	RoomID string
}

type ForceStopReply struct {
	Stopped bool
}

// ForceStopRoom broadcasts GameStop to the room's participants and evicts
// the room.
func (a *AdminService) ForceStopRoom(args *ForceStopArgs, reply *ForceStopReply) error {
	reply.Stopped = a.rooms.Remove(args.RoomID)
	return nil
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	RoomIDs []string
}

func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.RoomIDs = a.rooms.IDs()
	return nil
}

type PlayerTotalsArgs struct {
	UUID string
}

type PlayerTotalsReply struct {
	Totals *models.PlayerTotals
}

func (a *AdminService) GetPlayerTotals(args *PlayerTotalsArgs, reply *PlayerTotalsReply) error {
	totals, err := a.records.GetPlayerTotals(args.UUID)
	if err != nil {
		return err
	}
	reply.Totals = totals
	return nil
}
