package services

import (
	"sort"
	"sync"
	"time"

	"github.com/wfunc/casino/models"
	"github.com/wfunc/casino/persistence"
)

// MockDatabase 测试用的内存实现, 语义对齐 persistence 层
type MockDatabase struct {
	mutex        sync.Mutex
	nextUserID   int64
	nextRoomID   int64
	users        map[int64]*models.User
	usersByName  map[string]int64
	rooms        []*models.Room
	roomPlayers  map[int64][]models.RoomPlayer
	transactions []models.Transaction
	sessions     int
}

func NewMockDatabase() *MockDatabase {
	return &MockDatabase{
		nextUserID:  1,
		nextRoomID:  1,
		users:       make(map[int64]*models.User),
		usersByName: make(map[string]int64),
		roomPlayers: make(map[int64][]models.RoomPlayer),
	}
}

func (m *MockDatabase) CreateUser(username, passwordHash string, startingBalance int64) (*models.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.usersByName[username]; exists {
		return nil, persistence.ErrDuplicateUsername
	}
	u := &models.User{
		ID:           m.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		Balance:      startingBalance,
		CreatedAt:    time.Now(),
	}
	m.nextUserID++
	m.users[u.ID] = u
	m.usersByName[username] = u.ID
	copied := *u
	return &copied, nil
}

func (m *MockDatabase) UserByName(username string) (*models.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	id, ok := m.usersByName[username]
	if !ok {
		return nil, persistence.ErrRecordNotFound
	}
	copied := *m.users[id]
	return &copied, nil
}

func (m *MockDatabase) UserByID(id int64) (*models.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, persistence.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockDatabase) AddBalance(userID int64, delta int64) (*models.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, persistence.ErrRecordNotFound
	}
	if u.Balance+delta < 0 {
		return nil, persistence.ErrInsufficientBalance
	}
	u.Balance += delta
	copied := *u
	return &copied, nil
}

func (m *MockDatabase) UpdateStats(userID int64, wagered, won int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return persistence.ErrRecordNotFound
	}
	u.TotalWagered += wagered
	u.TotalWon += won
	u.GamesPlayed++
	return nil
}

func (m *MockDatabase) TouchLastLogin(userID int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return persistence.ErrRecordNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

func (m *MockDatabase) GrantDailyBonus(userID int64, amount int64) (*models.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, persistence.ErrRecordNotFound
	}
	now := time.Now()
	u.Balance += amount
	u.LastDailyBonus = &now
	copied := *u
	return &copied, nil
}

func (m *MockDatabase) RecordTransaction(tx *models.Transaction) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	tx.ID = int64(len(m.transactions) + 1)
	tx.CreatedAt = time.Now()
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m *MockDatabase) TransactionsByUser(userID int64, limit int) ([]models.Transaction, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var out []models.Transaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.transactions[i].UserID == userID {
			out = append(out, m.transactions[i])
		}
	}
	return out, nil
}

func (m *MockDatabase) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var entries []models.LeaderboardEntry
	for _, u := range m.users {
		if u.TotalWon <= 0 {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			UserID:      u.ID,
			Username:    u.Username,
			Score:       u.TotalWon,
			GamesPlayed: u.GamesPlayed,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (m *MockDatabase) CreateRoom(code, gameType string, hostID int64, maxPlayers int) (*models.Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	rm := &models.Room{
		ID:         m.nextRoomID,
		Code:       code,
		GameType:   gameType,
		HostID:     hostID,
		Status:     models.RoomStatusWaiting,
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now(),
	}
	m.nextRoomID++
	m.rooms = append(m.rooms, rm)
	copied := *rm
	return &copied, nil
}

// RoomByCode 返回该房间码最新的一条记录, 和存储层的 ORDER BY id DESC 一致
func (m *MockDatabase) RoomByCode(code string) (*models.Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for i := len(m.rooms) - 1; i >= 0; i-- {
		if m.rooms[i].Code == code {
			copied := *m.rooms[i]
			return &copied, nil
		}
	}
	return nil, persistence.ErrRecordNotFound
}

func (m *MockDatabase) UpdateRoomStatus(roomID int64, status string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, rm := range m.rooms {
		if rm.ID == roomID {
			rm.Status = status
			return nil
		}
	}
	return persistence.ErrRecordNotFound
}

func (m *MockDatabase) IncrementRound(roomID int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, rm := range m.rooms {
		if rm.ID == roomID {
			rm.CurrentRound++
			return nil
		}
	}
	return persistence.ErrRecordNotFound
}

func (m *MockDatabase) AddRoomPlayer(roomID, userID int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, p := range m.roomPlayers[roomID] {
		if p.UserID == userID {
			return nil
		}
	}
	username := ""
	if u, ok := m.users[userID]; ok {
		username = u.Username
	}
	m.roomPlayers[roomID] = append(m.roomPlayers[roomID], models.RoomPlayer{
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
		JoinedAt: time.Now(),
	})
	return nil
}

func (m *MockDatabase) RemoveRoomPlayer(roomID, userID int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	players := m.roomPlayers[roomID]
	for i, p := range players {
		if p.UserID == userID {
			m.roomPlayers[roomID] = append(players[:i], players[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MockDatabase) RoomPlayers(roomID int64) ([]models.RoomPlayer, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	players := m.roomPlayers[roomID]
	out := make([]models.RoomPlayer, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (m *MockDatabase) RoomPlayerCount(roomID int64) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.roomPlayers[roomID]), nil
}

func (m *MockDatabase) AddRoomScore(roomID, userID int64, delta int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	players := m.roomPlayers[roomID]
	for i := range players {
		if players[i].UserID == userID {
			players[i].Score += delta
			return nil
		}
	}
	return persistence.ErrRecordNotFound
}

func (m *MockDatabase) RecordGameSession(userID int64, gameType, patternType, difficulty string, bet, payout int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions++
	return nil
}

func (m *MockDatabase) Close() error { return nil }
