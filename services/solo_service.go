// services/solo_service.go
package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/casino/config"
	"github.com/wfunc/casino/game/pattern"
	"github.com/wfunc/casino/game/slots"
	"github.com/wfunc/casino/models"
	"github.com/wfunc/casino/persistence"
)

// 未提交的单人对局在内存中保留的最长时间
const soloGameTTL = 10 * time.Minute

type soloGame struct {
	id        string
	userID    int64
	pattern   *pattern.Pattern
	createdAt time.Time
}

// SoloGameView 下发给客户端的对局视图, 不含答案
type SoloGameView struct {
	GameID     string             `json:"game_id"`
	Type       string             `json:"type"`
	Difficulty pattern.Difficulty `json:"difficulty"`
	Sequence   []pattern.Item     `json:"sequence"`
}

// SoloResult 一次提交的结算结果
type SoloResult struct {
	Correct    bool          `json:"correct"`
	Answer     pattern.Item  `json:"answer"`
	Hints      pattern.Hints `json:"hints"`
	Bet        int64         `json:"bet"`
	Payout     int64         `json:"payout"`
	NewBalance int64         `json:"new_balance"`
}

// SoloGameService 单人模式. 对局只存在于内存, 答案在提交前不出服务器
type SoloGameService struct {
	db    persistence.Database
	cfg   config.GameConfig
	mutex sync.Mutex
	games map[string]*soloGame
}

func NewSoloGameService(db persistence.Database, cfg config.GameConfig) *SoloGameService {
	return &SoloGameService{
		db:    db,
		cfg:   cfg,
		games: make(map[string]*soloGame),
	}
}

// StartGame 开一局, 返回序列但扣留答案
func (s *SoloGameService) StartGame(userID int64, patternType string, difficulty pattern.Difficulty) (*SoloGameView, error) {
	if difficulty == "" {
		difficulty = pattern.Easy
	}
	p := pattern.Generate(patternType, difficulty)

	game := &soloGame{
		id:        uuid.New().String(),
		userID:    userID,
		pattern:   p,
		createdAt: time.Now(),
	}

	s.mutex.Lock()
	s.pruneLocked()
	s.games[game.id] = game
	s.mutex.Unlock()

	return &SoloGameView{
		GameID:     game.id,
		Type:       p.Type,
		Difficulty: p.Difficulty,
		Sequence:   p.Sequence,
	}, nil
}

// SubmitGuess 提交猜测并结算. 单人模式的注金越界直接拒绝, 不收拢
func (s *SoloGameService) SubmitGuess(gameID string, userID int64, guess pattern.Guess, guessType pattern.GuessType, bet int64) (*SoloResult, error) {
	if bet < s.cfg.MinBet || bet > s.cfg.MaxBet {
		return nil, ErrInvalidBet
	}

	s.mutex.Lock()
	game, ok := s.games[gameID]
	if ok && game.userID == userID {
		delete(s.games, gameID)
	}
	s.mutex.Unlock()
	if !ok || game.userID != userID {
		return nil, ErrGameNotFound
	}

	correct := pattern.Validate(game.pattern, guess, guessType)
	payout := pattern.Payout(bet, guessType, correct)

	updated, err := s.db.AddBalance(userID, payout-bet)
	if err != nil {
		// 扣款失败 (余额不足等), 对局放回去允许重试
		s.mutex.Lock()
		s.games[gameID] = game
		s.mutex.Unlock()
		return nil, err
	}

	if err := s.db.UpdateStats(userID, bet, payout); err != nil {
		return nil, err
	}
	s.recordOutcome(userID, game, bet, payout)

	return &SoloResult{
		Correct:    correct,
		Answer:     game.pattern.Answer,
		Hints:      game.pattern.Hints,
		Bet:        bet,
		Payout:     payout,
		NewBalance: updated.Balance,
	}, nil
}

// SlotsResult 一次旋转的结算
type SlotsResult struct {
	Spin       slots.Result `json:"spin"`
	Bet        int64        `json:"bet"`
	Payout     int64        `json:"payout"`
	NewBalance int64        `json:"new_balance"`
}

// SpinSlots 老虎机无对局状态, 一次请求完成下注和结算
func (s *SoloGameService) SpinSlots(userID int64, bet int64) (*SlotsResult, error) {
	if bet < s.cfg.MinBet || bet > s.cfg.MaxBet {
		return nil, ErrInvalidBet
	}

	result := slots.Spin()
	payout := slots.Payout(bet, result)

	updated, err := s.db.AddBalance(userID, payout-bet)
	if err != nil {
		return nil, err
	}
	if err := s.db.UpdateStats(userID, bet, payout); err != nil {
		return nil, err
	}
	_ = s.db.RecordGameSession(userID, "slots", "", "", bet, payout)
	_ = s.db.RecordTransaction(&models.Transaction{
		UserID:      userID,
		Amount:      -bet,
		Type:        models.TransactionBet,
		GameType:    "slots",
		Description: "slots spin",
	})
	if payout > 0 {
		_ = s.db.RecordTransaction(&models.Transaction{
			UserID:      userID,
			Amount:      payout,
			Type:        models.TransactionWin,
			GameType:    "slots",
			Description: "slots win",
		})
	}

	return &SlotsResult{
		Spin:       result,
		Bet:        bet,
		Payout:     payout,
		NewBalance: updated.Balance,
	}, nil
}

// ActiveGames 进行中的单人对局数, 用于监控
func (s *SoloGameService) ActiveGames() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.games)
}

// pruneLocked 清理超时未提交的对局, 调用方持有锁
func (s *SoloGameService) pruneLocked() {
	cutoff := time.Now().Add(-soloGameTTL)
	for id, g := range s.games {
		if g.createdAt.Before(cutoff) {
			delete(s.games, id)
		}
	}
}

func (s *SoloGameService) recordOutcome(userID int64, game *soloGame, bet, payout int64) {
	_ = s.db.RecordGameSession(userID, "pattern-prediction", game.pattern.Type, string(game.pattern.Difficulty), bet, payout)
	_ = s.db.RecordTransaction(&models.Transaction{
		UserID:      userID,
		Amount:      -bet,
		Type:        models.TransactionBet,
		GameType:    "pattern-prediction",
		Description: "solo bet",
	})
	if payout > 0 {
		_ = s.db.RecordTransaction(&models.Transaction{
			UserID:      userID,
			Amount:      payout,
			Type:        models.TransactionWin,
			GameType:    "pattern-prediction",
			Description: "solo win",
		})
	}
}
