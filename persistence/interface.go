// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/casino/models"
)

// 错误定义
var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateUsername   = errors.New("username already taken")
)

// Database 数据库接口, 每个方法自身保证原子性
type Database interface {
	// 用户
	CreateUser(username, passwordHash string, startingBalance int64) (*models.User, error)
	UserByName(username string) (*models.User, error)
	UserByID(id int64) (*models.User, error)
	AddBalance(userID int64, delta int64) (*models.User, error)
	UpdateStats(userID int64, wagered, won int64) error
	TouchLastLogin(userID int64) error
	GrantDailyBonus(userID int64, amount int64) (*models.User, error)

	// 流水
	RecordTransaction(tx *models.Transaction) error
	TransactionsByUser(userID int64, limit int) ([]models.Transaction, error)

	// 排行榜
	Leaderboard(limit int) ([]models.LeaderboardEntry, error)

	// 房间
	CreateRoom(code, gameType string, hostID int64, maxPlayers int) (*models.Room, error)
	RoomByCode(code string) (*models.Room, error)
	UpdateRoomStatus(roomID int64, status string) error
	IncrementRound(roomID int64) error
	AddRoomPlayer(roomID, userID int64) error
	RemoveRoomPlayer(roomID, userID int64) error
	RoomPlayers(roomID int64) ([]models.RoomPlayer, error)
	RoomPlayerCount(roomID int64) (int, error)
	AddRoomScore(roomID, userID int64, delta int64) error

	// 单人对局记录
	RecordGameSession(userID int64, gameType, patternType, difficulty string, bet, payout int64) error

	Close() error
}
