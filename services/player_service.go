// services/player_service.go
package services

import (
	"time"

	"github.com/wfunc/casino/config"
	"github.com/wfunc/casino/models"
	"github.com/wfunc/casino/persistence"
)

const dailyBonusInterval = 24 * time.Hour

// PlayerService 玩家档案、金币和排行榜
type PlayerService struct {
	db  persistence.Database
	cfg config.GameConfig
}

func NewPlayerService(db persistence.Database, cfg config.GameConfig) *PlayerService {
	return &PlayerService{db: db, cfg: cfg}
}

// Profile 获取玩家信息和统计
func (s *PlayerService) Profile(userID int64) (*models.User, error) {
	return s.db.UserByID(userID)
}

// ClaimDailyBonus 领取每日奖励, 24 小时内重复领取被拒绝
func (s *PlayerService) ClaimDailyBonus(userID int64) (*models.User, error) {
	user, err := s.db.UserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.LastDailyBonus != nil && time.Since(*user.LastDailyBonus) < dailyBonusInterval {
		return nil, ErrBonusNotReady
	}

	updated, err := s.db.GrantDailyBonus(userID, s.cfg.DailyBonus)
	if err != nil {
		return nil, err
	}
	s.recordTransaction(userID, s.cfg.DailyBonus, models.TransactionBonus, "", "daily bonus")
	return updated, nil
}

// NextBonusIn 距离下次可领取的剩余时间, 可领取时为零
func (s *PlayerService) NextBonusIn(user *models.User) time.Duration {
	if user.LastDailyBonus == nil {
		return 0
	}
	remaining := dailyBonusInterval - time.Since(*user.LastDailyBonus)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Transactions 最近的金币流水
func (s *PlayerService) Transactions(userID int64, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.db.TransactionsByUser(userID, limit)
}

// Leaderboard 按累计赢取金额排序的排行榜
func (s *PlayerService) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.db.Leaderboard(limit)
}

// recordTransaction 流水只作审计用途, 写失败不影响主流程
func (s *PlayerService) recordTransaction(userID, amount int64, txType, gameType, description string) {
	_ = s.db.RecordTransaction(&models.Transaction{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		GameType:    gameType,
		Description: description,
	})
}
