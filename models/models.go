// models/models.go
package models

import (
	"time"
)

// 房间状态
const (
	RoomStatusWaiting  = "waiting"
	RoomStatusPlaying  = "playing"
	RoomStatusFinished = "finished"
	RoomStatusClosed   = "closed"
)

// 流水类型
const (
	TransactionBet   = "bet"
	TransactionWin   = "win"
	TransactionBonus = "bonus"
)

// User 用户数据模型
type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"-"`
	Balance        int64      `json:"balance"`
	TotalWagered   int64      `json:"total_wagered"`
	TotalWon       int64      `json:"total_won"`
	GamesPlayed    int        `json:"games_played"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login"`
	LastDailyBonus *time.Time `json:"last_daily_bonus"`
}

// Room 多人房间模型
type Room struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	GameType     string    `json:"game_type"`
	HostID       int64     `json:"host_id"`
	Status       string    `json:"status"`
	MaxPlayers   int       `json:"max_players"`
	CurrentRound int       `json:"current_round"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoomPlayer 房间成员, (room, user) 唯一
type RoomPlayer struct {
	RoomID   int64     `json:"room_id"`
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	Score    int64     `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

// Transaction 金币流水
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	GameType    string    `json:"game_type,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// LeaderboardEntry 排行榜条目, 按累计赢取金额排序
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       int64  `json:"id"`
	Username     string `json:"username"`
	Score        int64  `json:"score"`
	GamesPlayed  int    `json:"games_played"`
	TotalWagered int64  `json:"total_wagered"`
}
