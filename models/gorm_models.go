// models/gorm_models.go
package models

import (
	"time"
)

// GormUser 用户表
type GormUser struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Username       string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	Balance        int64  `gorm:"default:10000"`
	TotalWagered   int64  `gorm:"default:0"`
	TotalWon       int64  `gorm:"default:0"`
	GamesPlayed    int    `gorm:"default:0"`
	CreatedAt      time.Time
	LastLogin      *time.Time
	LastDailyBonus *time.Time
}

func (GormUser) TableName() string { return "users" }

// GormRoom 房间表
type GormRoom struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	// 房间码只建普通索引: 关闭的房间保留历史行, 同一个码可以再次发放
	Code         string `gorm:"index;not null;size:6"`
	GameType     string `gorm:"not null"`
	HostID       int64  `gorm:"not null"`
	Status       string `gorm:"not null;default:waiting"`
	MaxPlayers   int    `gorm:"default:8"`
	CurrentRound int    `gorm:"default:0"`
	CreatedAt    time.Time
}

func (GormRoom) TableName() string { return "game_rooms" }

// GormRoomPlayer 房间成员表, (room_id, user_id) 唯一
type GormRoomPlayer struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	RoomID   int64 `gorm:"uniqueIndex:idx_room_user;not null"`
	UserID   int64 `gorm:"uniqueIndex:idx_room_user;not null"`
	Score    int64 `gorm:"default:0"`
	JoinedAt time.Time
}

func (GormRoomPlayer) TableName() string { return "room_players" }

// GormTransaction 流水表
type GormTransaction struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	UserID      int64 `gorm:"index;not null"`
	Amount      int64 `gorm:"not null"`
	Type        string
	GameType    string
	Description string
	CreatedAt   time.Time
}

func (GormTransaction) TableName() string { return "transactions" }

// GormGameSession 单人对局记录表
type GormGameSession struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	UserID      int64 `gorm:"index;not null"`
	GameType    string
	PatternType string
	Difficulty  string
	BetAmount   int64
	Payout      int64
	CreatedAt   time.Time
}

func (GormGameSession) TableName() string { return "game_sessions" }
