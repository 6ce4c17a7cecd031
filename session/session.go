// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/cardauction/game"
	"github.com/wfunc/cardauction/network"
)

// Session is one live connection of one registered participant. The same
// player may reconnect under a new session; the (RoomID, PlayerUUID) pair is
// the stable address, the session id is per-connection.
type Session struct {
	ID         string
	Conn       network.Connection
	RoomID     string
	PlayerID   game.PlayerID
	PlayerUUID string
	CreatedAt  time.Time

	mutex      sync.RWMutex
	lastActive time.Time
}

func NewSession(id string, conn network.Connection, roomID string, playerID game.PlayerID, playerUUID string) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		RoomID:     roomID,
		PlayerID:   playerID,
		PlayerUUID: playerUUID,
		CreatedAt:  now,
		lastActive: now,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

// Touch records inbound traffic, heartbeats included.
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = time.Now()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) Send(msgID uint16, data []byte) error {
	return s.Conn.Send(msgID, data)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, ok := m.sessions[sessionID]
	return session, ok
}

// GetByRoom returns every live session attached to a room.
func (m *Manager) GetByRoom(roomID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.RoomID == roomID {
			result = append(result, session)
		}
	}
	return result
}

// GetByPlayer finds the session of one participant in one room, if any.
func (m *Manager) GetByPlayer(roomID, playerUUID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, session := range m.sessions {
		if session.RoomID == roomID && session.PlayerUUID == playerUUID {
			return session, true
		}
	}
	return nil, false
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
