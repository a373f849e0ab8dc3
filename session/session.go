// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/casino/network"
)

type Session struct {
	ID         string
	Conn       network.Connection
	UserID     int64
	Username   string
	RoomCode   string // 当前加入的房间, 空表示未加入
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

// SetRoom 记录会话当前所在的房间
func (s *Session) SetRoom(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomCode = code
}

func (s *Session) Room() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.RoomCode
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器, 按会话ID、用户ID和房间号索引
type Manager struct {
	sessions map[string]*Session
	byRoom   map[string]map[string]*Session // roomCode -> sessionID -> session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byRoom:   make(map[string]map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return
	}
	delete(m.sessions, sessionID)
	if code := session.Room(); code != "" {
		m.detachLocked(sessionID, code)
	}
}

// AttachToRoom 将会话加入房间的广播组
func (m *Manager) AttachToRoom(sessionID, roomCode string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return
	}
	if old := session.Room(); old != "" {
		m.detachLocked(sessionID, old)
	}
	session.SetRoom(roomCode)
	if m.byRoom[roomCode] == nil {
		m.byRoom[roomCode] = make(map[string]*Session)
	}
	m.byRoom[roomCode][sessionID] = session
}

// DetachFromRoom 将会话移出广播组
func (m *Manager) DetachFromRoom(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return
	}
	if code := session.Room(); code != "" {
		m.detachLocked(sessionID, code)
		session.SetRoom("")
	}
}

func (m *Manager) detachLocked(sessionID, roomCode string) {
	if members, ok := m.byRoom[roomCode]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(m.byRoom, roomCode)
		}
	}
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) GetByUserID(userID int64) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.UserID == userID {
			result = append(result, session)
		}
	}
	return result
}

// GetByRoomCode 返回房间广播组内所有会话的副本
func (m *Manager) GetByRoomCode(roomCode string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	members := m.byRoom[roomCode]
	result := make([]*Session, 0, len(members))
	for _, session := range members {
		result = append(result, session)
	}
	return result
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}
